// Package ticket implements the ticket naming convention and the
// similar-ticket cross-referencing search.
//
// A ticket is a document whose file name follows the ticket naming
// convention (e.g. "ticket-12345.txt"). Cross-referencing surfaces other
// tickets whose content is similar to a source document, aggregating
// chunk-level similarities by maximum.
package ticket

import "regexp"

var numberPattern = regexp.MustCompile(`(?i)ticket[_-]?(\d+)`)

// UnknownNumber is returned by Number when the file name carries no
// recognizable ticket number.
const UnknownNumber = "unknown"

// Number extracts the ticket number from a file name such as
// "ticket-12345.txt" or "TICKET_67890.pdf".
func Number(fileName string) string {
	m := numberPattern.FindStringSubmatch(fileName)
	if m == nil {
		return UnknownNumber
	}
	return m[1]
}

// IsTicket reports whether a file name follows the ticket naming convention.
func IsTicket(fileName string) bool {
	return numberPattern.MatchString(fileName)
}
