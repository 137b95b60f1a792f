package coerce

import "fmt"

// Diag receives non-fatal observations made during validation, such as
// extraneous properties under FlagExtraPropertyNotice or an unrecognized
// "format" name. The default sink discards everything.
type Diag interface {
	Warnf(format string, args ...any)
}

type nopDiag struct{}

func (nopDiag) Warnf(string, ...any) {}

// CollectDiag is a Diag that records formatted warnings in order.
type CollectDiag struct {
	Warnings []string
}

func (d *CollectDiag) Warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}
