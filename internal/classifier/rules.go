package classifier

import (
	"regexp"

	"github.com/medwire/newscore/internal/domain"
)

// Category names assigned by the classifier.
const (
	CategoryDrugApproval   = "drug_approval"
	CategorySafetyAlert    = "safety_alert"
	CategoryClinicalTrials = "clinical_trials"
	CategoryRegulatory     = "regulatory"
	CategoryResearch       = "research"
	CategoryBusiness       = "business"
	CategoryIndustryNews   = "industry_news"
)

// categoryRule assigns a category when any of its patterns matches the
// combined item text. Patterns are case-insensitive.
type categoryRule struct {
	category string
	patterns []*regexp.Regexp
}

// categoryRules is evaluated in order; every matching category is
// assigned, on top of any source defaults.
var categoryRules = []categoryRule{
	{
		category: CategoryDrugApproval,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(fda|ema|mhra)\s+approv`),
			regexp.MustCompile(`(?i)\bapprov(al|ed|es)\b.*\b(drug|therapy|treatment|biologic|vaccine)`),
			regexp.MustCompile(`(?i)\b(nda|bla|maa)\s+(approval|filing|submission|accepted)`),
			regexp.MustCompile(`(?i)\bmarketing\s+authori[sz]ation\b`),
			regexp.MustCompile(`(?i)\baccelerated\s+approval\b`),
		},
	},
	{
		category: CategorySafetyAlert,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\brecall(s|ed|ing)?\b`),
			regexp.MustCompile(`(?i)\bsafety\s+(alert|warning|signal|communication)`),
			regexp.MustCompile(`(?i)\bblack\s+box\s+warning\b`),
			regexp.MustCompile(`(?i)\badverse\s+(event|reaction)s?\b`),
			regexp.MustCompile(`(?i)\bwithdraw(n|al|s)?\b.*\bmarket\b`),
			regexp.MustCompile(`(?i)\bcontaminat(ed|ion)\b`),
		},
	},
	{
		category: CategoryClinicalTrials,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bphase\s*(1|2|3|4|i{1,3}v?)\b`),
			regexp.MustCompile(`(?i)\bclinical\s+(trial|study|studies)\b`),
			regexp.MustCompile(`(?i)\b(enroll(s|ed|ment|ing)?|recruit(s|ed|ment|ing)?)\b.*\b(trial|study|patients)`),
			regexp.MustCompile(`(?i)\b(topline|interim|primary\s+endpoint)\s+(results?|data|readout)`),
			regexp.MustCompile(`(?i)\bfirst\s+patient\s+dosed\b`),
		},
	},
	{
		category: CategoryRegulatory,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(fda|ema|mhra|pmda|health\s+canada)\b`),
			regexp.MustCompile(`(?i)\b(crl|complete\s+response\s+letter)\b`),
			regexp.MustCompile(`(?i)\badvisory\s+committee\b`),
			regexp.MustCompile(`(?i)\b(breakthrough|fast\s+track|orphan\s+drug|priority\s+review)\s+(therapy\s+)?designation`),
			regexp.MustCompile(`(?i)\bpdufa\b`),
		},
	},
	{
		category: CategoryResearch,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bpreclinical\b`),
			regexp.MustCompile(`(?i)\b(published|publication)\b.*\b(journal|lancet|nejm|nature|jama)`),
			regexp.MustCompile(`(?i)\bmechanism\s+of\s+action\b`),
			regexp.MustCompile(`(?i)\b(biomarker|genomic|proteomic)s?\b`),
			regexp.MustCompile(`(?i)\bdrug\s+(discovery|candidate)\b`),
		},
	},
	{
		category: CategoryBusiness,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(acquisition|acquires?|merger|buyout)\b`),
			regexp.MustCompile(`(?i)\b(licensing|collaboration|partnership)\s+(deal|agreement)`),
			regexp.MustCompile(`(?i)\b(ipo|series\s+[a-d]\b|venture\s+(capital|round))`),
			regexp.MustCompile(`(?i)\b(quarterly|annual)\s+(results|earnings|revenue)`),
			regexp.MustCompile(`(?i)\blayoffs?\b`),
		},
	},
}

// sourceDefaultCategories pre-seeds categories by source identity before
// pattern evaluation. Pattern-derived categories add to these, never
// replace them.
var sourceDefaultCategories = map[domain.Source][]string{
	domain.SourceFDADrugAlerts: {CategorySafetyAlert, CategoryRegulatory},
	domain.SourceEMAUpdates:    {CategoryRegulatory},
	domain.SourceTrialSiteNews: {CategoryClinicalTrials},
}

// sourceFallbackCategory is the single deterministic category assigned
// when both the defaults and the pattern pass produce nothing. Every item
// leaves classification with at least one category.
var sourceFallbackCategory = map[domain.Source]string{
	domain.SourceFiercePharma:  CategoryBusiness,
	domain.SourceEndpoints:     CategoryBusiness,
	domain.SourceBioSpace:      CategoryResearch,
	domain.SourceMedPageToday:  CategoryResearch,
	domain.SourceFDADrugAlerts: CategorySafetyAlert,
	domain.SourceEMAUpdates:    CategoryRegulatory,
	domain.SourceTrialSiteNews: CategoryClinicalTrials,
}

func fallbackCategory(source domain.Source) string {
	if cat, ok := sourceFallbackCategory[source]; ok {
		return cat
	}
	return CategoryIndustryNews
}
