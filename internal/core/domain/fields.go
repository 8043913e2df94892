package domain

// Field names form the global extraction vocabulary. Every DocumentMetadata
// carries all of them; the per-type schema only decides which ones keep their
// extracted values.
const (
	FieldNiuNumbers                = "niu_numbers"
	FieldRccmNumbers               = "rccm_numbers"
	FieldBusinessNames             = "business_names"
	FieldDates                     = "dates"
	FieldRegistrationNumbers       = "registration_numbers"
	FieldCompanyAddresses          = "company_addresses"
	FieldLegalForms                = "legal_forms"
	FieldCapitalAmounts            = "capital_amounts"
	FieldRegistrationDates         = "registration_dates"
	FieldDeliveredDates            = "delivered_dates"
	FieldCompanyDuration           = "company_duration"
	FieldTribunalNames             = "tribunal_names"
	FieldActivityCodes             = "activity_codes"
	FieldTaxAttestationNumbers     = "tax_attestation_numbers"
	FieldTaxCenters                = "tax_centers"
	FieldTaxSystems                = "tax_systems"
	FieldAcfeReferences            = "acfe_references"
	FieldDocumentLocationsAndDates = "document_locations_and_dates"
	FieldQuarters                  = "quarters"
	FieldPhoneNumbers              = "phone_numbers"
	FieldEmailAddresses            = "email_addresses"
	FieldRegimes                   = "regimes"
	FieldPromoterNames             = "promoter_names"
	FieldMinDailyRevenue           = "min_daily_revenue"
	FieldMaxDailyRevenue           = "max_daily_revenue"
	FieldName                      = "name"
	FieldSurname                   = "surname"
	FieldBirthDate                 = "birth_date"
	FieldProfession                = "profession"
)

// FieldSet maps field names to extracted values, unique and in first-match
// order. Built fresh per document, never merged across documents.
type FieldSet map[string][]string

// DocumentMetadata is the output record of the extraction pipeline. The field
// shape is stable: every vocabulary field is always present, and a value is
// non-empty only when it was extracted and is in schema for the detected type.
type DocumentMetadata struct {
	DocumentName string `json:"document_name"`
	DocumentType string `json:"document_type"`
	RawText      string `json:"raw_text"`

	NiuNumbers                []string `json:"niu_numbers"`
	RccmNumbers               []string `json:"rccm_numbers"`
	BusinessNames             []string `json:"business_names"`
	Dates                     []string `json:"dates"`
	RegistrationNumbers       []string `json:"registration_numbers"`
	CompanyAddresses          []string `json:"company_addresses"`
	LegalForms                []string `json:"legal_forms"`
	CapitalAmounts            []string `json:"capital_amounts"`
	RegistrationDates         []string `json:"registration_dates"`
	DeliveredDates            []string `json:"delivered_dates"`
	CompanyDuration           []string `json:"company_duration"`
	TribunalNames             []string `json:"tribunal_names"`
	ActivityCodes             []string `json:"activity_codes"`
	TaxAttestationNumbers     []string `json:"tax_attestation_numbers"`
	TaxCenters                []string `json:"tax_centers"`
	TaxSystems                []string `json:"tax_systems"`
	AcfeReferences            []string `json:"acfe_references"`
	DocumentLocationsAndDates []string `json:"document_locations_and_dates"`
	Quarters                  []string `json:"quarters"`
	PhoneNumbers              []string `json:"phone_numbers"`
	EmailAddresses            []string `json:"email_addresses"`
	Regimes                   []string `json:"regimes"`
	PromoterNames             []string `json:"promoter_names"`
	MinDailyRevenue           []string `json:"min_daily_revenue"`
	MaxDailyRevenue           []string `json:"max_daily_revenue"`
	Name                      []string `json:"name"`
	Surname                   []string `json:"surname"`
	BirthDate                 []string `json:"birth_date"`
	Profession                []string `json:"profession"`
}

type fieldAccessor struct {
	get func(*DocumentMetadata) []string
	set func(*DocumentMetadata, []string)
}

// fieldTable replaces the runtime reflection the original pipeline used to
// walk metadata fields by name: one closure pair per vocabulary field, built
// once, iterated in vocabulary order.
var fieldTable = map[string]fieldAccessor{
	FieldNiuNumbers:                {func(m *DocumentMetadata) []string { return m.NiuNumbers }, func(m *DocumentMetadata, v []string) { m.NiuNumbers = v }},
	FieldRccmNumbers:               {func(m *DocumentMetadata) []string { return m.RccmNumbers }, func(m *DocumentMetadata, v []string) { m.RccmNumbers = v }},
	FieldBusinessNames:             {func(m *DocumentMetadata) []string { return m.BusinessNames }, func(m *DocumentMetadata, v []string) { m.BusinessNames = v }},
	FieldDates:                     {func(m *DocumentMetadata) []string { return m.Dates }, func(m *DocumentMetadata, v []string) { m.Dates = v }},
	FieldRegistrationNumbers:       {func(m *DocumentMetadata) []string { return m.RegistrationNumbers }, func(m *DocumentMetadata, v []string) { m.RegistrationNumbers = v }},
	FieldCompanyAddresses:          {func(m *DocumentMetadata) []string { return m.CompanyAddresses }, func(m *DocumentMetadata, v []string) { m.CompanyAddresses = v }},
	FieldLegalForms:                {func(m *DocumentMetadata) []string { return m.LegalForms }, func(m *DocumentMetadata, v []string) { m.LegalForms = v }},
	FieldCapitalAmounts:            {func(m *DocumentMetadata) []string { return m.CapitalAmounts }, func(m *DocumentMetadata, v []string) { m.CapitalAmounts = v }},
	FieldRegistrationDates:         {func(m *DocumentMetadata) []string { return m.RegistrationDates }, func(m *DocumentMetadata, v []string) { m.RegistrationDates = v }},
	FieldDeliveredDates:            {func(m *DocumentMetadata) []string { return m.DeliveredDates }, func(m *DocumentMetadata, v []string) { m.DeliveredDates = v }},
	FieldCompanyDuration:           {func(m *DocumentMetadata) []string { return m.CompanyDuration }, func(m *DocumentMetadata, v []string) { m.CompanyDuration = v }},
	FieldTribunalNames:             {func(m *DocumentMetadata) []string { return m.TribunalNames }, func(m *DocumentMetadata, v []string) { m.TribunalNames = v }},
	FieldActivityCodes:             {func(m *DocumentMetadata) []string { return m.ActivityCodes }, func(m *DocumentMetadata, v []string) { m.ActivityCodes = v }},
	FieldTaxAttestationNumbers:     {func(m *DocumentMetadata) []string { return m.TaxAttestationNumbers }, func(m *DocumentMetadata, v []string) { m.TaxAttestationNumbers = v }},
	FieldTaxCenters:                {func(m *DocumentMetadata) []string { return m.TaxCenters }, func(m *DocumentMetadata, v []string) { m.TaxCenters = v }},
	FieldTaxSystems:                {func(m *DocumentMetadata) []string { return m.TaxSystems }, func(m *DocumentMetadata, v []string) { m.TaxSystems = v }},
	FieldAcfeReferences:            {func(m *DocumentMetadata) []string { return m.AcfeReferences }, func(m *DocumentMetadata, v []string) { m.AcfeReferences = v }},
	FieldDocumentLocationsAndDates: {func(m *DocumentMetadata) []string { return m.DocumentLocationsAndDates }, func(m *DocumentMetadata, v []string) { m.DocumentLocationsAndDates = v }},
	FieldQuarters:                  {func(m *DocumentMetadata) []string { return m.Quarters }, func(m *DocumentMetadata, v []string) { m.Quarters = v }},
	FieldPhoneNumbers:              {func(m *DocumentMetadata) []string { return m.PhoneNumbers }, func(m *DocumentMetadata, v []string) { m.PhoneNumbers = v }},
	FieldEmailAddresses:            {func(m *DocumentMetadata) []string { return m.EmailAddresses }, func(m *DocumentMetadata, v []string) { m.EmailAddresses = v }},
	FieldRegimes:                   {func(m *DocumentMetadata) []string { return m.Regimes }, func(m *DocumentMetadata, v []string) { m.Regimes = v }},
	FieldPromoterNames:             {func(m *DocumentMetadata) []string { return m.PromoterNames }, func(m *DocumentMetadata, v []string) { m.PromoterNames = v }},
	FieldMinDailyRevenue:           {func(m *DocumentMetadata) []string { return m.MinDailyRevenue }, func(m *DocumentMetadata, v []string) { m.MinDailyRevenue = v }},
	FieldMaxDailyRevenue:           {func(m *DocumentMetadata) []string { return m.MaxDailyRevenue }, func(m *DocumentMetadata, v []string) { m.MaxDailyRevenue = v }},
	FieldName:                      {func(m *DocumentMetadata) []string { return m.Name }, func(m *DocumentMetadata, v []string) { m.Name = v }},
	FieldSurname:                   {func(m *DocumentMetadata) []string { return m.Surname }, func(m *DocumentMetadata, v []string) { m.Surname = v }},
	FieldBirthDate:                 {func(m *DocumentMetadata) []string { return m.BirthDate }, func(m *DocumentMetadata, v []string) { m.BirthDate = v }},
	FieldProfession:                {func(m *DocumentMetadata) []string { return m.Profession }, func(m *DocumentMetadata, v []string) { m.Profession = v }},
}

// FieldVocabulary returns the global field names in their canonical order.
func FieldVocabulary() []string {
	return []string{
		FieldNiuNumbers,
		FieldRccmNumbers,
		FieldBusinessNames,
		FieldDates,
		FieldRegistrationNumbers,
		FieldCompanyAddresses,
		FieldLegalForms,
		FieldCapitalAmounts,
		FieldRegistrationDates,
		FieldDeliveredDates,
		FieldCompanyDuration,
		FieldTribunalNames,
		FieldActivityCodes,
		FieldTaxAttestationNumbers,
		FieldTaxCenters,
		FieldTaxSystems,
		FieldAcfeReferences,
		FieldDocumentLocationsAndDates,
		FieldQuarters,
		FieldPhoneNumbers,
		FieldEmailAddresses,
		FieldRegimes,
		FieldPromoterNames,
		FieldMinDailyRevenue,
		FieldMaxDailyRevenue,
		FieldName,
		FieldSurname,
		FieldBirthDate,
		FieldProfession,
	}
}

// IsVocabularyField reports whether name belongs to the global vocabulary.
func IsVocabularyField(name string) bool {
	_, ok := fieldTable[name]
	return ok
}

// Field returns the values stored under a vocabulary field name, nil for
// names outside the vocabulary.
func (m *DocumentMetadata) Field(name string) []string {
	acc, ok := fieldTable[name]
	if !ok {
		return nil
	}
	return acc.get(m)
}

// SetField stores values under a vocabulary field name. Names outside the
// vocabulary are ignored.
func (m *DocumentMetadata) SetField(name string, values []string) {
	if acc, ok := fieldTable[name]; ok {
		acc.set(m, values)
	}
}

// ApplyFieldSet copies every vocabulary entry of fields onto the metadata
// record. Vocabulary fields absent from the set stay untouched.
func (m *DocumentMetadata) ApplyFieldSet(fields FieldSet) {
	for name, values := range fields {
		m.SetField(name, values)
	}
}

// NonEmptyFieldCount counts vocabulary fields holding at least one value.
func (m *DocumentMetadata) NonEmptyFieldCount() int {
	count := 0
	for _, name := range FieldVocabulary() {
		if len(m.Field(name)) > 0 {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of the metadata record.
func (m *DocumentMetadata) Clone() *DocumentMetadata {
	out := &DocumentMetadata{
		DocumentName: m.DocumentName,
		DocumentType: m.DocumentType,
		RawText:      m.RawText,
	}
	for _, name := range FieldVocabulary() {
		values := m.Field(name)
		if values == nil {
			continue
		}
		copied := make([]string, len(values))
		copy(copied, values)
		out.SetField(name, copied)
	}
	return out
}
