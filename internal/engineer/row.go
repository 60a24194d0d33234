package engineer

// row.go maps between raw CSV lines and Record fields.
//
// ParseRow must preserve trailing empty fields: a row whose optional tail
// columns are blank still has exactly ColumnCount fields. strings.Split
// gives that guarantee; encoding/csv with FieldsPerRecord=-1 would too, but
// the engineer file contract forbids embedded delimiters so a plain split
// keeps line numbers 1:1 with file lines.

import "strings"

// FieldDelimiter separates columns within a CSV line.
const FieldDelimiter = ","

// ParseRow splits a CSV line into its ordered fields.
// Trailing empty columns remain as empty-string fields.
func ParseRow(line string) []string {
	return strings.Split(line, FieldDelimiter)
}

// JoinRow joins ordered fields back into a CSV line.
func JoinRow(fields []string) string {
	return strings.Join(fields, FieldDelimiter)
}

// FromRow builds a Record from a fixed-order field slice.
// The slice must have at least ColumnCount entries; the store checks the
// column count before calling this.
func FromRow(fields []string) (Record, error) {
	return NewBuilder().
		ID(fields[0]).
		Name(fields[1]).
		NameKana(fields[2]).
		BirthDate(fields[3]).
		JoinDate(fields[4]).
		CareerYears(fields[5]).
		Languages(fields[6]).
		CareerHistory(fields[7]).
		TrainingHistory(fields[8]).
		TechnicalSkill(fields[9]).
		LearningAttitude(fields[10]).
		CommunicationSkill(fields[11]).
		Leadership(fields[12]).
		Note(fields[13]).
		RegisteredDate(fields[14]).
		Build()
}
