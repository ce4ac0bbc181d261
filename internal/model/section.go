package model

// Section is one of the five fixed CLAT exam subject categories.
type Section string

const (
	SectionEnglish                Section = "ENGLISH"
	SectionGKCA                   Section = "GK_CA"
	SectionLegalReasoning         Section = "LEGAL_REASONING"
	SectionLogicalReasoning       Section = "LOGICAL_REASONING"
	SectionQuantitativeTechniques Section = "QUANTITATIVE_TECHNIQUES"
)

// AllSections lists the sections in their fixed declaration order. This order
// is relied on for deterministic tie-breaking in analytics insights.
var AllSections = []Section{
	SectionEnglish,
	SectionGKCA,
	SectionLegalReasoning,
	SectionLogicalReasoning,
	SectionQuantitativeTechniques,
}

func (s Section) IsValid() bool {
	for _, sec := range AllSections {
		if s == sec {
			return true
		}
	}
	return false
}
