package extraction

import (
	"regexp"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

// fieldPattern is one extraction category: the named regular expressions that
// feed a single vocabulary field. When joinWith is set, all capture groups of
// a match are joined into one formatted value; otherwise the first non-empty
// capture group (or the full match when the pattern has no groups) is kept.
type fieldPattern struct {
	field    string
	patterns []*regexp.Regexp
	joinWith string
	validate func(string) bool
}

// Shared date shapes. Numeric first, then French long form.
const (
	numericDate = `\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}`
	frenchDate  = `\d{1,2}(?:er)?\s+(?:janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[ûu]t|septembre|octobre|novembre|d[ée]cembre)\s+\d{4}`
)

var (
	reNiuLabeled = regexp.MustCompile(`(?i)\bNIU\s*(?:N[°o]\s*)?:?\s*([A-Z0-9][A-Z0-9-]{5,15})`)
	reNiuBare    = regexp.MustCompile(`\b[A-Z]\d{12}[A-Z]\b`)

	reRccmBare    = regexp.MustCompile(`\bRC(?:CM)?/[A-Z]{2,5}/\d{4}/[A-Z]/\d{1,6}\b`)
	reRccmLabeled = regexp.MustCompile(`(?i)\bRCCM\s*(?:N[°o]\s*)?:?\s*([A-Z0-9][A-Z0-9/.-]{5,30})`)

	reBusinessName = regexp.MustCompile(`(?i)(?:raison\s+sociale|d[ée]nomination(?:\s+sociale)?|nom\s+commercial|[ée]tablissements?)\s*:?\s*([A-Z0-9][^\n;]{2,60})`)

	reNumericDate = regexp.MustCompile(`\b` + numericDate + `\b`)
	reFrenchDate  = regexp.MustCompile(`(?i)\b` + frenchDate + `\b`)

	reRegistrationNumber = regexp.MustCompile(`(?i)(?:n[°o]|num[ée]ro)\s*(?:d['e]\s*)?(?:enregistrement|r[ée]c[ée]piss[ée]|identification)\s*:?\s*([A-Z0-9][A-Z0-9/.-]{3,30})`)

	reAddress = regexp.MustCompile(`(?i)(?:adresse|si[èe]ge\s+social|situ[ée]e?\s+[àa]|B\.?P\.?\s*:?)\s*:?\s*([^\n;]{3,80})`)

	reLegalForm = regexp.MustCompile(`(?i)\b(SARL|SASU|SAS|SNC|GIE|EURL|ETS|SA|entreprise\s+individuelle)\b`)

	reCapital = regexp.MustCompile(`(?i)capital(?:\s+social)?\s*(?:de)?\s*:?\s*(\d[\d\s.,]*\d|\d)\s*(FCFA|F\s?CFA|XAF|francs\s+CFA)`)

	reRegistrationDate = regexp.MustCompile(`(?i)(?:immatricul[ée]e?\s+le|date\s+d['i]mmatriculation\s*:?)\s*(` + numericDate + `|` + frenchDate + `)`)
	reDeliveredDate    = regexp.MustCompile(`(?i)d[ée]livr[ée]e?\s+le\s*:?\s*(` + numericDate + `|` + frenchDate + `)`)

	reCompanyDuration = regexp.MustCompile(`(?i)dur[ée]e\s*(?:de\s+la\s+soci[ée]t[ée])?\s*:?\s*(\d{1,3}\s*(?:ans?|ann[ée]es?))`)

	reTribunal = regexp.MustCompile(`(?i)(tribunal\s+(?:de\s+)?(?:premi[èe]re\s+instance\s+(?:de\s+)?)?[A-Za-zÀ-ÖØ-öø-ÿ' -]{3,50})`)

	reActivityCode = regexp.MustCompile(`(?i)(?:code\s+(?:d['e]\s*)?activit[ée]s?|activit[ée]s?\s+principales?)\s*:?\s*([A-Z0-9][^\n;]{1,50})`)

	reAttestationNumber = regexp.MustCompile(`(?i)attestation\s*(?:de\s+(?:non\s+redevance|conformit[ée]\s+fiscale))?\s*(?:n[°o])\s*:?\s*([A-Z0-9][A-Z0-9/.-]{3,30})`)
	reAttestationRef    = regexp.MustCompile(`(?i)\bn[°o]\s*attestation\s*:?\s*([A-Z0-9][A-Z0-9/.-]{3,30})`)

	reTaxCenter = regexp.MustCompile(`(?i)((?:centre\s+(?:r[ée]gional\s+)?des?\s+imp[ôo]ts|CDI|CIME|CRI)\s+(?:de\s+|du\s+|d')?[A-Za-zÀ-ÖØ-öø-ÿ0-9' -]{2,40})`)

	reTaxSystem = regexp.MustCompile(`(?i)syst[èe]me\s*(?:comptable|fiscal|d['i]mposition)?\s*:?\s*([A-Za-zÀ-ÖØ-öø-ÿ' -]{3,40})`)
	reRegime    = regexp.MustCompile(`(?i)r[ée]gime\s*(?:d['i]mposition|fiscal)?\s*:?\s*([A-Za-zÀ-ÖØ-öø-ÿ' -]{3,40})`)

	reAcfeLabeled = regexp.MustCompile(`(?i)\bACFE\s*(?:n[°o]|ref(?:\.|[ée]rence)?)?\s*[:\-]?\s*([A-Z0-9][A-Z0-9/-]{3,20})`)

	reLocationDate = regexp.MustCompile(`(?i)fait\s+[àa]\s+([A-Za-zÀ-ÖØ-öø-ÿ][A-Za-zÀ-ÖØ-öø-ÿ' -]{1,30}?)\s*,?\s*le\s+(` + numericDate + `|` + frenchDate + `)`)

	reQuarter = regexp.MustCompile(`(?i)quartier\s*:?\s*([^\n;,]{2,40})`)

	rePhone = regexp.MustCompile(`(?:\+?237[\s.-]?)?\b[62]\d{2}[\s.-]?\d{2}[\s.-]?\d{2}[\s.-]?\d{2}\b`)

	reEmailLabeled = regexp.MustCompile(`(?i)(?:e-?mail|courriel|adresse\s+[ée]lectronique)\s*:?\s*([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+)`)
	reEmailBare    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	rePromoter = regexp.MustCompile(`(?i)(?:nom\s+du\s+)?promoteur\s*:?\s*([A-ZÀ-ÖØ-Þ][A-Za-zÀ-ÖØ-öø-ÿ' -]{2,50})`)

	reMinRevenue = regexp.MustCompile(`(?i)(?:recettes?|chiffre\s+d'affaires?)\s*(?:journali[èe]res?)?\s*(?:minimales?|min\.?)\s*:?\s*(\d[\d\s.,]*\d|\d)\s*(FCFA|F\s?CFA|XAF)`)
	reMaxRevenue = regexp.MustCompile(`(?i)(?:recettes?|chiffre\s+d'affaires?)\s*(?:journali[èe]res?)?\s*(?:maximales?|max\.?)\s*:?\s*(\d[\d\s.,]*\d|\d)\s*(FCFA|F\s?CFA|XAF)`)

	reCniName    = regexp.MustCompile(`(?im)^\s*noms?\s*(?:/\s*surname)?\s*:?\s*([A-ZÀ-ÖØ-Þ][A-Za-zÀ-ÖØ-öø-ÿ' -]{1,40})`)
	reCniSurname = regexp.MustCompile(`(?im)^\s*pr[ée]noms?\s*(?:/\s*given\s*names?)?\s*:?\s*([A-ZÀ-ÖØ-Þ][A-Za-zÀ-ÖØ-öø-ÿ' -]{1,40})`)
	reBirthDate  = regexp.MustCompile(`(?i)(?:n[ée]e?\s+le|date\s+de\s+naissance|date\s+of\s+birth)\s*:?\s*(` + numericDate + `|` + frenchDate + `)`)
	reProfession = regexp.MustCompile(`(?i)profession\s*:?\s*([A-Za-zÀ-ÖØ-öø-ÿ' -]{2,40})`)
)

var (
	datesCategory  = fieldPattern{field: domain.FieldDates, patterns: []*regexp.Regexp{reNumericDate, reFrenchDate}}
	niuCategory    = fieldPattern{field: domain.FieldNiuNumbers, patterns: []*regexp.Regexp{reNiuLabeled, reNiuBare}}
	emailsCategory = fieldPattern{
		field:    domain.FieldEmailAddresses,
		patterns: []*regexp.Regexp{reEmailLabeled, reEmailBare},
		validate: isPlausibleEmail,
	}
	phonesCategory = fieldPattern{field: domain.FieldPhoneNumbers, patterns: []*regexp.Regexp{rePhone}}
)

// routines dispatches extraction per document type; types without an entry
// use genericRoutine. Each routine fixes the field-key shape of its output:
// every listed field is present in the result even when nothing matched.
var routines = map[domain.DocumentType][]fieldPattern{
	domain.DocumentTypeRegistreCommerce: {
		{field: domain.FieldRccmNumbers, patterns: []*regexp.Regexp{reRccmBare, reRccmLabeled}},
		{field: domain.FieldBusinessNames, patterns: []*regexp.Regexp{reBusinessName}},
		{field: domain.FieldLegalForms, patterns: []*regexp.Regexp{reLegalForm}},
		{field: domain.FieldCapitalAmounts, patterns: []*regexp.Regexp{reCapital}, joinWith: " "},
		{field: domain.FieldRegistrationDates, patterns: []*regexp.Regexp{reRegistrationDate}},
		{field: domain.FieldDeliveredDates, patterns: []*regexp.Regexp{reDeliveredDate}},
		{field: domain.FieldCompanyDuration, patterns: []*regexp.Regexp{reCompanyDuration}},
		{field: domain.FieldTribunalNames, patterns: []*regexp.Regexp{reTribunal}},
		{field: domain.FieldActivityCodes, patterns: []*regexp.Regexp{reActivityCode}},
		{field: domain.FieldCompanyAddresses, patterns: []*regexp.Regexp{reAddress}},
		datesCategory,
		{field: domain.FieldQuarters, patterns: []*regexp.Regexp{reQuarter}},
	},
	domain.DocumentTypeAttestationFiscale: {
		niuCategory,
		{field: domain.FieldTaxAttestationNumbers, patterns: []*regexp.Regexp{reAttestationNumber, reAttestationRef}},
		{field: domain.FieldBusinessNames, patterns: []*regexp.Regexp{reBusinessName}},
		{field: domain.FieldTaxCenters, patterns: []*regexp.Regexp{reTaxCenter}},
		{field: domain.FieldTaxSystems, patterns: []*regexp.Regexp{reTaxSystem}},
		{field: domain.FieldRegimes, patterns: []*regexp.Regexp{reRegime}},
		{field: domain.FieldAcfeReferences, patterns: []*regexp.Regexp{reAcfeLabeled}},
		{field: domain.FieldDocumentLocationsAndDates, patterns: []*regexp.Regexp{reLocationDate}, joinWith: ", "},
		datesCategory,
	},
	domain.DocumentTypeCarteContribuable: {
		niuCategory,
		{field: domain.FieldBusinessNames, patterns: []*regexp.Regexp{reBusinessName}},
		{field: domain.FieldTaxCenters, patterns: []*regexp.Regexp{reTaxCenter}},
		{field: domain.FieldRegimes, patterns: []*regexp.Regexp{reRegime}},
		{field: domain.FieldCompanyAddresses, patterns: []*regexp.Regexp{reAddress}},
		{field: domain.FieldQuarters, patterns: []*regexp.Regexp{reQuarter}},
		phonesCategory,
		{field: domain.FieldDeliveredDates, patterns: []*regexp.Regexp{reDeliveredDate}},
		datesCategory,
	},
	domain.DocumentTypeCniOrRecipice: {
		{field: domain.FieldName, patterns: []*regexp.Regexp{reCniName}},
		{field: domain.FieldSurname, patterns: []*regexp.Regexp{reCniSurname}},
		{field: domain.FieldBirthDate, patterns: []*regexp.Regexp{reBirthDate}},
		{field: domain.FieldProfession, patterns: []*regexp.Regexp{reProfession}},
		{field: domain.FieldRegistrationNumbers, patterns: []*regexp.Regexp{reRegistrationNumber}},
		{field: domain.FieldDeliveredDates, patterns: []*regexp.Regexp{reDeliveredDate}},
		datesCategory,
	},
	domain.DocumentTypeFormulaireAgregeOM: {
		{field: domain.FieldPromoterNames, patterns: []*regexp.Regexp{rePromoter}},
		niuCategory,
		phonesCategory,
		emailsCategory,
		{field: domain.FieldBusinessNames, patterns: []*regexp.Regexp{reBusinessName}},
		{field: domain.FieldCompanyAddresses, patterns: []*regexp.Regexp{reAddress}},
		{field: domain.FieldQuarters, patterns: []*regexp.Regexp{reQuarter}},
		{field: domain.FieldActivityCodes, patterns: []*regexp.Regexp{reActivityCode}},
		{field: domain.FieldMinDailyRevenue, patterns: []*regexp.Regexp{reMinRevenue}, joinWith: " "},
		{field: domain.FieldMaxDailyRevenue, patterns: []*regexp.Regexp{reMaxRevenue}, joinWith: " "},
		datesCategory,
	},
}

// genericRoutine covers Unknown and any future unmapped type: the broad
// patterns that make sense on an arbitrary business document.
var genericRoutine = []fieldPattern{
	niuCategory,
	{field: domain.FieldRccmNumbers, patterns: []*regexp.Regexp{reRccmBare, reRccmLabeled}},
	{field: domain.FieldBusinessNames, patterns: []*regexp.Regexp{reBusinessName}},
	datesCategory,
	{field: domain.FieldRegistrationNumbers, patterns: []*regexp.Regexp{reRegistrationNumber}},
	{field: domain.FieldCompanyAddresses, patterns: []*regexp.Regexp{reAddress}},
	{field: domain.FieldDocumentLocationsAndDates, patterns: []*regexp.Regexp{reLocationDate}, joinWith: ", "},
	{field: domain.FieldQuarters, patterns: []*regexp.Regexp{reQuarter}},
	phonesCategory,
	emailsCategory,
	{field: domain.FieldRegimes, patterns: []*regexp.Regexp{reRegime}},
}
