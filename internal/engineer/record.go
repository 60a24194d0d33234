// Package engineer provides the domain model for engineer personnel records.
// This package has no UI or transport dependencies and can be used by web
// handlers, CLI tools, or tests without modification.
package engineer

import (
	"strconv"
	"strings"
	"time"
)

// ColumnCount is the fixed number of columns in an engineer CSV row.
const ColumnCount = 15

// Field length limits enforced by the builder.
const (
	MaxNameLength     = 20
	MaxKanaLength     = 20
	MaxCareerLength   = 200
	MaxTrainingLength = 200
	MaxNoteLength     = 500
)

// Skill score bounds. A blank skill field is valid (unrated).
const (
	MinSkillScore = 1.0
	MaxSkillScore = 5.0
)

// LanguageDelimiter separates entries inside the programming-languages column.
const LanguageDelimiter = ";"

// DateLayout is the on-disk date format.
const DateLayout = "2006-01-02"

// joinMonthLayout is accepted on read for join dates given as year/month only.
const joinMonthLayout = "2006-01"

// header is the fixed CSV header row. Column order matches Record.Row.
var header = []string{
	"社員ID(5桁)",
	"氏名",
	"フリガナ",
	"生年月日",
	"入社年月",
	"エンジニア歴",
	"扱える言語",
	"経歴",
	"研修の受講歴",
	"技術力",
	"受講態度",
	"コミュニケーション能力",
	"リーダーシップ",
	"備考",
	"登録日",
}

// Header returns the CSV header row for engineer files.
func Header() []string {
	h := make([]string, len(header))
	copy(h, header)
	return h
}

// Record is one validated engineer profile.
//
// Skill scores are pointers: nil means the engineer has not been rated for
// that skill, which is a valid state distinct from any numeric score.
type Record struct {
	ID                   string
	Name                 string
	NameKana             string
	BirthDate            time.Time
	JoinDate             time.Time // always day 1 of its month
	CareerYears          int
	ProgrammingLanguages []string
	CareerHistory        string
	TrainingHistory      string
	Note                 string
	TechnicalSkill       *float64
	LearningAttitude     *float64
	CommunicationSkill   *float64
	Leadership           *float64
	RegisteredDate       time.Time // stamped by the writer, not the reader
}

// Row serializes the record into its fixed 15-column CSV form.
// Programming languages are joined with LanguageDelimiter into one field.
func (r Record) Row() []string {
	return []string{
		r.ID,
		r.Name,
		r.NameKana,
		formatDate(r.BirthDate),
		formatDate(r.JoinDate),
		strconv.Itoa(r.CareerYears),
		strings.Join(r.ProgrammingLanguages, LanguageDelimiter),
		r.CareerHistory,
		r.TrainingHistory,
		formatSkill(r.TechnicalSkill),
		formatSkill(r.LearningAttitude),
		formatSkill(r.CommunicationSkill),
		formatSkill(r.Leadership),
		r.Note,
		formatDate(r.RegisteredDate),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func formatSkill(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
