package core

// selection.go implements the cascading selection transitions. Each
// transition narrows state only through explicit user events: a new year
// clears make, version and document; a new make clears version and
// document; a new version clears the document. Selecting the already
// selected value is a no-op.

import (
	"context"
	"fmt"
	"slices"
)

// SelectYear sets the session's model year and loads its listing through
// the memoized fetch. A pagination failure keeps whatever rows accumulated
// on the session and is returned for reporting.
func (s *Service) SelectYear(ctx context.Context, id string, year int) error {
	if !ValidYear(year) {
		return fmt.Errorf("year %d: %w", year, ErrInvalidSelection)
	}

	sess, err := s.session(id)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()

	if sess.tableLoaded && sess.year == year {
		return nil
	}

	sess.year = year
	sess.make = ""
	sess.version = ""
	sess.pdf = nil
	sess.table = nil
	sess.tableLoaded = false

	table, err := s.listing(ctx, year)
	sess.table = table
	sess.tableLoaded = err == nil
	if err != nil {
		return err
	}
	return nil
}

// SelectMake sets the manufacturer. The value must be one of the makes
// derived from the active table.
func (s *Service) SelectMake(id, make string) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()

	if sess.year == 0 {
		return ErrNoYear
	}
	if !slices.Contains(Makes(sess.table), make) {
		return fmt.Errorf("make %q: %w", make, ErrInvalidSelection)
	}
	if sess.make == make {
		return nil
	}

	sess.make = make
	sess.version = ""
	sess.pdf = nil
	return nil
}

// SelectVersion sets the document version by its option label.
func (s *Service) SelectVersion(id, label string) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()

	if sess.make == "" {
		return ErrNoMake
	}
	valid := false
	for _, opt := range Versions(sess.table, sess.make) {
		if opt.Label == label {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("version %q: %w", label, ErrInvalidSelection)
	}
	if sess.version == label {
		return nil
	}

	sess.version = label
	sess.pdf = nil
	return nil
}

// State returns a snapshot of the session's selections and derived options.
func (s *Service) State(id string) (SelectionState, error) {
	sess, err := s.session(id)
	if err != nil {
		return SelectionState{}, err
	}
	defer sess.mu.Unlock()

	st := SelectionState{
		Year:     sess.year,
		Make:     sess.make,
		Version:  sess.version,
		Makes:    []string{},
		Versions: []VersionOption{},
	}
	if sess.year == 0 {
		return st, nil
	}

	st.EmptyListing = sess.tableLoaded && len(sess.table) == 0
	st.Makes = Makes(sess.table)
	if sess.make == "" {
		return st, nil
	}

	st.Versions = Versions(sess.table, sess.make)
	if sess.version == "" {
		return st, nil
	}

	name := versionName(sess.version)
	st.Summary = fmt.Sprintf("Showing documentation for %d %s - %s", sess.year, sess.make, name)
	if row, ok := findRow(sess.table, sess.make, name); ok {
		st.Document = &DocumentInfo{
			Filename:  documentFilename(sess.year, sess.make, name),
			DirectURL: row.URL,
			Loaded:    sess.pdf != nil,
		}
	}
	return st, nil
}
