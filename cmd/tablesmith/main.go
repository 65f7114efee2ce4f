// Package main contains the tablesmith CLI. It compiles structured schema
// and query requests into SQL, optionally executing them against a live
// MySQL database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"tablesmith/internal/compiler"
	"tablesmith/internal/config"
	"tablesmith/internal/dberr"
	"tablesmith/internal/exec"
	"tablesmith/internal/output"
	"tablesmith/internal/preflight"
	"tablesmith/internal/schema"
)

type alterRequest struct {
	Table      string               `json:"table"`
	Operations []compiler.Operation `json:"operations"`
}

type whereRequest struct {
	Table      string               `json:"table"`
	Conditions []compiler.Condition `json:"conditions"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var dsn string
	var format string

	rootCmd := &cobra.Command{
		Use:           "tablesmith",
		Short:         "Compile structured schema operations into injection-safe MySQL",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "tablesmith.toml", "Path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "MySQL DSN (overrides the config file)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "Output format: json or human")

	loadSettings := func() (*config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		if dsn != "" {
			cfg.DSN = dsn
		}
		if format != "" {
			cfg.Format = format
		}
		return cfg, nil
	}

	rootCmd.AddCommand(compileCmd(loadSettings))
	rootCmd.AddCommand(whereCmd(loadSettings))
	rootCmd.AddCommand(execCmd(loadSettings))
	rootCmd.AddCommand(checkCmd())
	return rootCmd
}

// newCompiler builds a compiler over a live metadata provider when a DSN is
// configured, or an empty static provider otherwise. Operations that need
// live metadata (RENAME_COLUMN, conditions) require the DSN.
func newCompiler(ctx context.Context, cfg *config.Config) (*compiler.Compiler, *exec.Runner, error) {
	if cfg.DSN == "" {
		return compiler.New(schema.Static{}), nil, nil
	}
	runner, err := exec.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return compiler.New(schema.NewDB(runner.DB())), runner, nil
}

func readRequest(path string, into any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}
	return nil
}

// render prints either the statement or, for domain errors, the classified
// failure payload. Unclassified errors propagate to cobra.
func render(cmd *cobra.Command, formatName string, stmt *output.Statement, err error) error {
	formatter, ferr := output.NewFormatter(formatName)
	if ferr != nil {
		return ferr
	}

	if err != nil {
		var de *dberr.Error
		if errors.As(err, &de) {
			text, ferr := formatter.FormatFailure(de)
			if ferr != nil {
				return ferr
			}
			cmd.Print(text)
			return err
		}
		return err
	}

	text, ferr := formatter.FormatStatement(stmt)
	if ferr != nil {
		return ferr
	}
	cmd.Print(text)
	return nil
}

func compileCmd(loadSettings func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <request.json>",
		Short: "Compile an ALTER request to SQL without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}

			var req alterRequest
			if err := readRequest(args[0], &req); err != nil {
				return err
			}

			ctx := cmd.Context()
			comp, runner, err := newCompiler(ctx, cfg)
			if err != nil {
				return err
			}
			if runner != nil {
				defer runner.Close()
			}

			sql, err := comp.CompileAlter(ctx, req.Table, req.Operations)
			if err != nil {
				return render(cmd, cfg.Format, nil, err)
			}
			return render(cmd, cfg.Format, &output.Statement{
				SQL:             sql,
				OperationsCount: len(req.Operations),
			}, nil)
		},
	}
}

func whereCmd(loadSettings func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "where <request.json>",
		Short: "Compile a condition list into a parameterized WHERE clause",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}

			var req whereRequest
			if err := readRequest(args[0], &req); err != nil {
				return err
			}

			ctx := cmd.Context()
			comp, runner, err := newCompiler(ctx, cfg)
			if err != nil {
				return err
			}
			if runner != nil {
				defer runner.Close()
			}

			where, err := comp.CompileCondition(ctx, req.Table, req.Conditions)
			if err != nil {
				return render(cmd, cfg.Format, nil, err)
			}
			return render(cmd, cfg.Format, &output.Statement{
				SQL:    where.SQL,
				Params: where.Params,
			}, nil)
		},
	}
}

func execCmd(loadSettings func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <request.json>",
		Short: "Compile an ALTER request and execute it against the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			if cfg.DSN == "" {
				return fmt.Errorf("exec requires a DSN; pass --dsn or set dsn in %s", "tablesmith.toml")
			}

			var req alterRequest
			if err := readRequest(args[0], &req); err != nil {
				return err
			}

			ctx := cmd.Context()
			comp, runner, err := newCompiler(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			sql, err := comp.CompileAlter(ctx, req.Table, req.Operations)
			if err != nil {
				return render(cmd, cfg.Format, nil, err)
			}

			if cfg.Preflight {
				if err := preflight.NewAnalyzer().CheckStatement(sql); err != nil {
					return fmt.Errorf("preflight rejected compiled statement: %w", err)
				}
			}

			res, err := runner.Exec(ctx, sql)
			if err != nil {
				return render(cmd, cfg.Format, nil, err)
			}
			return render(cmd, cfg.Format, &output.Statement{
				SQL:             sql,
				OperationsCount: len(req.Operations),
				Executed:        true,
				AffectedRows:    res.AffectedRows,
				ExecutionTimeMs: res.ExecutionTimeMs(),
			}, nil)
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.sql>",
		Short: "Run the keyword blocklist over raw SQL text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read SQL file: %w", err)
			}
			if err := preflight.CheckRawSQL(string(data)); err != nil {
				return err
			}
			cmd.Println("OK")
			return nil
		},
	}
}
