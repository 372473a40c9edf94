package core

import "context"

// findRow returns the first row matching the manufacturer and display
// name. First match wins when duplicates exist, preserving fetch order.
func findRow(table ListingTable, make, name string) (ListingRow, bool) {
	for _, row := range table {
		if row.Manufacturer == make && row.Name == name {
			return row, true
		}
	}
	return ListingRow{}, false
}

// Document returns the PDF for the session's fully resolved selection,
// fetching it on first access and caching the bytes until the selection
// changes. The table can have been refreshed between option derivation and
// resolution, so a missing row is ErrNotFound rather than a panic.
func (s *Service) Document(ctx context.Context, id string) (*PDFDocument, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	switch {
	case sess.year == 0:
		return nil, ErrNoYear
	case sess.make == "":
		return nil, ErrNoMake
	case sess.version == "":
		return nil, ErrNoVersion
	}

	if sess.pdf != nil {
		return sess.pdf, nil
	}

	name := versionName(sess.version)
	row, ok := findRow(sess.table, sess.make, name)
	if !ok {
		return nil, ErrNotFound
	}

	bytes, err := s.docs.FetchDocument(ctx, row.URL)
	if err != nil {
		return nil, err
	}

	sess.pdf = &PDFDocument{
		Bytes:    bytes,
		Filename: documentFilename(sess.year, sess.make, name),
	}
	return sess.pdf, nil
}
