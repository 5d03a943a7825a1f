// This file adds a lightweight linter/validator for Config values. It performs
// static checks over a loaded Config and returns a list of issues (errors and
// warnings) that callers can surface in the CLI or tests.
package config

import "fmt"

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path names the offending
// variable; Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Config. It does not mutate the
// config; callers decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	if c.DBUser == "" {
		issues = append(issues, Issue{SeverityError, "DB_USER", "database user is required"})
	}
	if c.DBPassword == "" {
		issues = append(issues, Issue{SeverityError, "DB_PASSWORD", "database password is required"})
	}
	if c.DBMaxConns < 1 {
		issues = append(issues, Issue{SeverityError, "DB_MAX_CONNS", "must be >= 1"})
	}

	switch c.SourceKind {
	case SourceSheets:
		if c.SheetID == "" {
			issues = append(issues, Issue{SeverityError, "GOOGLE_SHEET_ID", "required for the sheets source"})
		}
		if c.CredentialsPath == "" {
			issues = append(issues, Issue{SeverityError, "GOOGLE_CREDENTIALS_PATH", "required for the sheets source"})
		}
	case SourceXLSX, SourceCSV:
		if c.SourcePath == "" {
			issues = append(issues, Issue{SeverityError, "SOURCE_PATH", fmt.Sprintf("required for the %s source", c.SourceKind)})
		}
	default:
		issues = append(issues, Issue{SeverityError, "SOURCE_KIND",
			fmt.Sprintf("unknown source kind %q; expected sheets, xlsx, or csv", c.SourceKind)})
	}

	if c.SheetName == "" {
		issues = append(issues, Issue{SeverityError, "SHEET_NAME", "sheet/tab name must not be empty"})
	}
	if c.SkipRows < 0 {
		issues = append(issues, Issue{SeverityError, "SKIP_ROWS", "must be >= 0"})
	}
	if c.BatchSize < 1 {
		issues = append(issues, Issue{SeverityError, "BATCH_SIZE", "must be >= 1"})
	}
	if c.LoaderWorkers < 1 {
		issues = append(issues, Issue{SeverityError, "LOADER_WORKERS", "must be >= 1"})
	}
	if c.MaxRetries < 0 {
		issues = append(issues, Issue{SeverityError, "MAX_RETRIES", "must be >= 0"})
	}
	if c.QualityThresholdPct <= 0 || c.QualityThresholdPct > 100 {
		issues = append(issues, Issue{SeverityWarning, "QUALITY_THRESHOLD_PCT",
			fmt.Sprintf("%.1f is outside (0,100]; degradation checks may be meaningless", c.QualityThresholdPct)})
	}

	return issues
}

// HasError reports whether any issue is of error severity.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
