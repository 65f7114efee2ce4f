package output

import (
	"fmt"
	"strings"

	"tablesmith/internal/dberr"
)

type humanFormatter struct{}

func (humanFormatter) FormatStatement(s *Statement) (string, error) {
	if s == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(s.SQL)
	if !strings.HasSuffix(strings.TrimSpace(s.SQL), ";") {
		sb.WriteString(";")
	}
	sb.WriteString("\n")

	if len(s.Params) > 0 {
		fmt.Fprintf(&sb, "-- params: %v\n", s.Params)
	}
	if s.OperationsCount > 0 {
		fmt.Fprintf(&sb, "-- operations: %d\n", s.OperationsCount)
	}
	if s.Executed {
		fmt.Fprintf(&sb, "-- executed in %.2f ms", s.ExecutionTimeMs)
		if s.AffectedRows > 0 {
			fmt.Fprintf(&sb, ", %d row(s) affected", s.AffectedRows)
		}
		if s.LastInsertID > 0 {
			fmt.Fprintf(&sb, ", insert id %d", s.LastInsertID)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (humanFormatter) FormatFailure(e *dberr.Error) (string, error) {
	if e == nil {
		return "", nil
	}
	return fmt.Sprintf("error [%s]: %s\n", e.Kind, e.Message), nil
}
