package scoring

import "github.com/medwire/newscore/internal/domain"

// areaProfile holds the curated matching data for one therapeutic area:
// keywords that indicate the area, drug-class terms associated with it,
// and the sources that cover it well.
type areaProfile struct {
	keywords         []string
	drugClasses      []string
	preferredSources []domain.Source
}

// therapeuticAreas maps a profile's therapeutic-area string (lowercased)
// to its curated matching data.
var therapeuticAreas = map[string]areaProfile{
	"oncology": {
		keywords: []string{
			"oncology", "cancer", "tumor", "tumour", "carcinoma", "lymphoma",
			"leukemia", "melanoma", "metastatic", "solid tumor",
		},
		drugClasses: []string{
			"checkpoint inhibitor", "car-t", "antibody-drug conjugate",
			"kinase inhibitor", "parp inhibitor", "immunotherapy",
		},
		preferredSources: []domain.Source{domain.SourceEndpoints, domain.SourceFiercePharma},
	},
	"cardiology": {
		keywords: []string{
			"cardiology", "cardiovascular", "heart failure", "hypertension",
			"atrial fibrillation", "myocardial", "cholesterol", "stroke",
		},
		drugClasses: []string{
			"statin", "anticoagulant", "beta blocker", "pcsk9", "sglt2",
		},
		preferredSources: []domain.Source{domain.SourceMedPageToday, domain.SourceFiercePharma},
	},
	"neurology": {
		keywords: []string{
			"neurology", "alzheimer", "parkinson", "multiple sclerosis",
			"epilepsy", "migraine", "neurodegenerative", "dementia", "als",
		},
		drugClasses: []string{
			"monoclonal antibody", "gene therapy", "anti-amyloid",
		},
		preferredSources: []domain.Source{domain.SourceMedPageToday, domain.SourceBioSpace},
	},
	"immunology": {
		keywords: []string{
			"immunology", "autoimmune", "rheumatoid arthritis", "psoriasis",
			"lupus", "crohn", "ulcerative colitis", "inflammation",
		},
		drugClasses: []string{
			"jak inhibitor", "tnf inhibitor", "biologic", "interleukin",
		},
		preferredSources: []domain.Source{domain.SourceFiercePharma, domain.SourceEndpoints},
	},
	"infectious_disease": {
		keywords: []string{
			"infectious disease", "antibiotic", "antiviral", "hiv", "hepatitis",
			"influenza", "covid", "tuberculosis", "sepsis", "antimicrobial",
		},
		drugClasses: []string{
			"vaccine", "mrna", "monoclonal antibody",
		},
		preferredSources: []domain.Source{domain.SourceMedPageToday, domain.SourceFDADrugAlerts},
	},
	"rare_disease": {
		keywords: []string{
			"rare disease", "orphan drug", "duchenne", "cystic fibrosis",
			"hemophilia", "spinal muscular atrophy", "gaucher", "fabry",
		},
		drugClasses: []string{
			"gene therapy", "enzyme replacement", "sirna", "antisense",
		},
		preferredSources: []domain.Source{domain.SourceBioSpace, domain.SourceEndpoints},
	},
	"endocrinology": {
		keywords: []string{
			"endocrinology", "diabetes", "obesity", "thyroid", "insulin",
			"glucose", "metabolic", "weight loss",
		},
		drugClasses: []string{
			"glp-1", "sglt2", "insulin analog",
		},
		preferredSources: []domain.Source{domain.SourceFiercePharma, domain.SourceMedPageToday},
	},
	"respiratory": {
		keywords: []string{
			"respiratory", "asthma", "copd", "pulmonary", "fibrosis",
			"bronchitis", "inhaler",
		},
		drugClasses: []string{
			"bronchodilator", "corticosteroid", "biologic",
		},
		preferredSources: []domain.Source{domain.SourceMedPageToday, domain.SourceFiercePharma},
	},
}

// phaseKeywords maps a profile's phase string to the text variants that
// indicate it.
var phaseKeywords = map[string][]string{
	"PRECLINICAL": {"preclinical", "pre-clinical", "animal study", "in vitro"},
	"PHASE1":      {"phase 1", "phase i ", "phase i,", "first-in-human", "dose escalation"},
	"PHASE2":      {"phase 2", "phase ii", "proof of concept", "dose ranging"},
	"PHASE3":      {"phase 3", "phase iii", "pivotal trial", "pivotal study", "registrational"},
	"PHASE4":      {"phase 4", "phase iv", "post-marketing", "real-world evidence"},
}

// phasePreferredSources lists sources with strong coverage per phase.
var phasePreferredSources = map[string][]domain.Source{
	"PRECLINICAL": {domain.SourceBioSpace},
	"PHASE1":      {domain.SourceEndpoints, domain.SourceBioSpace},
	"PHASE2":      {domain.SourceEndpoints, domain.SourceTrialSiteNews},
	"PHASE3":      {domain.SourceTrialSiteNews, domain.SourceFiercePharma},
	"PHASE4":      {domain.SourceMedPageToday, domain.SourceFDADrugAlerts},
}

// statusKeywords maps a profile's trial-status string to its text variants.
var statusKeywords = map[string][]string{
	"RECRUITING":         {"recruiting", "now enrolling", "enrollment open", "seeking participants"},
	"ACTIVE":             {"ongoing trial", "active study", "dosing underway", "underway"},
	"COMPLETED":          {"completed", "topline results", "final results", "study concludes"},
	"TERMINATED":         {"terminated", "discontinued", "halted", "stopped early"},
	"SUSPENDED":          {"suspended", "clinical hold", "paused"},
	"NOT_YET_RECRUITING": {"planned trial", "upcoming study", "trial announced"},
}

// statusPreferredSources lists sources with strong coverage per status.
var statusPreferredSources = map[string][]domain.Source{
	"RECRUITING": {domain.SourceTrialSiteNews},
	"COMPLETED":  {domain.SourceEndpoints, domain.SourceFiercePharma},
	"TERMINATED": {domain.SourceEndpoints},
	"SUSPENDED":  {domain.SourceFDADrugAlerts},
}

func sourceIn(list []domain.Source, s domain.Source) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}
