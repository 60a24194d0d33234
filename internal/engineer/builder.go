package engineer

// builder.go turns raw field values into a validated Record.
//
// The builder validates fail-fast: Build returns the first violated
// constraint as a single ValidationError so per-row error messages stay
// short when processing large files.

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidationError represents a single validation failure for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Builder collects raw field values and produces a validated Record.
// The zero value is not usable; create one with NewBuilder.
type Builder struct {
	id              string
	name            string
	nameKana        string
	birthDate       string
	joinDate        string
	careerYears     string
	languages       string
	careerHistory   string
	trainingHistory string
	note            string
	skills          [4]string // technical, attitude, communication, leadership
	registeredDate  string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) ID(v string) *Builder              { b.id = v; return b }
func (b *Builder) Name(v string) *Builder            { b.name = v; return b }
func (b *Builder) NameKana(v string) *Builder        { b.nameKana = v; return b }
func (b *Builder) BirthDate(v string) *Builder       { b.birthDate = v; return b }
func (b *Builder) JoinDate(v string) *Builder        { b.joinDate = v; return b }
func (b *Builder) CareerYears(v string) *Builder     { b.careerYears = v; return b }
func (b *Builder) Languages(v string) *Builder       { b.languages = v; return b }
func (b *Builder) CareerHistory(v string) *Builder   { b.careerHistory = v; return b }
func (b *Builder) TrainingHistory(v string) *Builder { b.trainingHistory = v; return b }
func (b *Builder) Note(v string) *Builder            { b.note = v; return b }
func (b *Builder) RegisteredDate(v string) *Builder  { b.registeredDate = v; return b }

func (b *Builder) TechnicalSkill(v string) *Builder     { b.skills[0] = v; return b }
func (b *Builder) LearningAttitude(v string) *Builder   { b.skills[1] = v; return b }
func (b *Builder) CommunicationSkill(v string) *Builder { b.skills[2] = v; return b }
func (b *Builder) Leadership(v string) *Builder         { b.skills[3] = v; return b }

// Build validates all collected fields and returns the Record.
// On failure it returns a *ValidationError naming the first violated field.
func (b *Builder) Build() (Record, error) {
	var rec Record
	var err error

	rec.ID, err = NormalizeID(b.id)
	if err != nil {
		return Record{}, &ValidationError{Field: "ID", Value: b.id, Message: err.Error()}
	}

	rec.Name = strings.TrimSpace(b.name)
	if rec.Name == "" {
		return Record{}, &ValidationError{Field: "氏名", Message: "required field is empty"}
	}
	if runeLen(rec.Name) > MaxNameLength {
		return Record{}, &ValidationError{Field: "氏名", Value: rec.Name,
			Message: fmt.Sprintf("exceeds %d characters", MaxNameLength)}
	}
	if err := checkPlainText("氏名", rec.Name); err != nil {
		return Record{}, err
	}

	rec.NameKana = strings.TrimSpace(b.nameKana)
	if rec.NameKana == "" {
		return Record{}, &ValidationError{Field: "フリガナ", Message: "required field is empty"}
	}
	if runeLen(rec.NameKana) > MaxKanaLength {
		return Record{}, &ValidationError{Field: "フリガナ", Value: rec.NameKana,
			Message: fmt.Sprintf("exceeds %d characters", MaxKanaLength)}
	}
	if err := checkPlainText("フリガナ", rec.NameKana); err != nil {
		return Record{}, err
	}

	rec.BirthDate, err = parseDate(b.birthDate)
	if err != nil {
		return Record{}, &ValidationError{Field: "生年月日", Value: b.birthDate, Message: err.Error()}
	}

	rec.JoinDate, err = parseJoinDate(b.joinDate)
	if err != nil {
		return Record{}, &ValidationError{Field: "入社年月", Value: b.joinDate, Message: err.Error()}
	}

	rec.CareerYears, err = parseCareerYears(b.careerYears)
	if err != nil {
		return Record{}, &ValidationError{Field: "エンジニア歴", Value: b.careerYears, Message: err.Error()}
	}

	rec.ProgrammingLanguages = SplitLanguages(b.languages)
	if len(rec.ProgrammingLanguages) == 0 {
		return Record{}, &ValidationError{Field: "扱える言語", Message: "at least one language is required"}
	}
	for _, l := range rec.ProgrammingLanguages {
		if err := checkPlainText("扱える言語", l); err != nil {
			return Record{}, err
		}
	}

	rec.CareerHistory = strings.TrimSpace(b.careerHistory)
	if runeLen(rec.CareerHistory) > MaxCareerLength {
		return Record{}, &ValidationError{Field: "経歴",
			Message: fmt.Sprintf("exceeds %d characters", MaxCareerLength)}
	}
	if err := checkPlainText("経歴", rec.CareerHistory); err != nil {
		return Record{}, err
	}

	rec.TrainingHistory = strings.TrimSpace(b.trainingHistory)
	if runeLen(rec.TrainingHistory) > MaxTrainingLength {
		return Record{}, &ValidationError{Field: "研修の受講歴",
			Message: fmt.Sprintf("exceeds %d characters", MaxTrainingLength)}
	}
	if err := checkPlainText("研修の受講歴", rec.TrainingHistory); err != nil {
		return Record{}, err
	}

	skillFields := [4]string{"技術力", "受講態度", "コミュニケーション能力", "リーダーシップ"}
	skillDst := [4]**float64{&rec.TechnicalSkill, &rec.LearningAttitude, &rec.CommunicationSkill, &rec.Leadership}
	for i, raw := range b.skills {
		v, err := parseSkill(raw)
		if err != nil {
			return Record{}, &ValidationError{Field: skillFields[i], Value: raw, Message: err.Error()}
		}
		*skillDst[i] = v
	}

	rec.Note = strings.TrimSpace(b.note)
	if runeLen(rec.Note) > MaxNoteLength {
		return Record{}, &ValidationError{Field: "備考",
			Message: fmt.Sprintf("exceeds %d characters", MaxNoteLength)}
	}
	if err := checkPlainText("備考", rec.Note); err != nil {
		return Record{}, err
	}

	if s := strings.TrimSpace(b.registeredDate); s != "" {
		rec.RegisteredDate, err = parseDate(s)
		if err != nil {
			return Record{}, &ValidationError{Field: "登録日", Value: s, Message: err.Error()}
		}
	}

	return rec, nil
}

// checkPlainText rejects characters that would break the one-record-per-line
// file layout: the field delimiter and line breaks. Serialization does no
// quoting, so these must never reach a stored field.
func checkPlainText(field, value string) error {
	if strings.Contains(value, FieldDelimiter) {
		return &ValidationError{Field: field, Value: value,
			Message: fmt.Sprintf("must not contain %q", FieldDelimiter)}
	}
	if strings.ContainsAny(value, "\r\n") {
		return &ValidationError{Field: field, Value: value, Message: "must not contain line breaks"}
	}
	return nil
}

// SplitLanguages splits the sub-delimited languages field, dropping blank
// entries. An all-blank field yields nil.
func SplitLanguages(raw string) []string {
	var langs []string
	for _, l := range strings.Split(raw, LanguageDelimiter) {
		l = strings.TrimSpace(l)
		if l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("required date is empty")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return t, nil
}

// parseJoinDate accepts YYYY-MM-DD or YYYY-MM and normalizes the result to
// the first day of its month.
func parseJoinDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("required date is empty")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		t, err = time.Parse(joinMonthLayout, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid join date %q (use YYYY-MM or YYYY-MM-DD)", s)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

func parseCareerYears(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("required value is empty")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("must be >= 0, got %d", n)
	}
	return n, nil
}

// parseSkill parses an optional skill score. A blank value is valid and
// yields nil (unrated). Scores carry at most one decimal place, matching
// the stored format, so every accepted value round-trips unchanged.
func parseSkill(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 1 {
		return nil, fmt.Errorf("at most one decimal place, got %s", s)
	}
	if v < MinSkillScore || v > MaxSkillScore {
		return nil, fmt.Errorf("must be between %.1f and %.1f, got %s", MinSkillScore, MaxSkillScore, s)
	}
	return &v, nil
}

func runeLen(s string) int {
	return len([]rune(s))
}
