package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess(t *testing.T) {
	assert.Equal(t, "a b c", Preprocess("a\tb  \t c"))
	assert.Equal(t, "", Preprocess("   \t  "))
	assert.Equal(t, "line one\nline two", Preprocess("  line one\nline two  "))
}

func TestExtract_VisitNote(t *testing.T) {
	got := Extract("Visit on 12/05/2023. Diagnosis: Hypertension. Rx: Amlodipine 5mg. Follow up: 2 weeks.")

	assert.Equal(t, "12/05/2023", got.Date)
	assert.Equal(t, "Hypertension.", got.Diagnosis)
	assert.Equal(t, "Amlodipine 5mg.", got.Medicines)
	assert.Equal(t, "2 weeks.", got.FollowUp)
	assert.Empty(t, got.Doctor)
	assert.Empty(t, got.Hospital)
	assert.Empty(t, got.PatientName)
}

func TestExtract_DoctorAndHospital(t *testing.T) {
	got := Extract("Seen by Dr. Asha Rao at City General Hospital on 2023-11-02")

	assert.Equal(t, "Dr. Asha Rao", got.Doctor)
	assert.Equal(t, "Hospital", got.Hospital)
	assert.Equal(t, "2023-11-02", got.Date)
}

func TestExtract_DoctorWithoutDot(t *testing.T) {
	got := Extract("Consultant: Dr Mehta")
	assert.Equal(t, "Dr Mehta", got.Doctor)
}

func TestExtract_HospitalVariants(t *testing.T) {
	assert.Equal(t, "Clinic", Extract("Sunrise Clinic visit summary").Hospital)
	assert.Equal(t, "Medical Center", Extract("Apollo Medical Center discharge note").Hospital)
	assert.Equal(t, "clinic", Extract("follow up at the clinic").Hospital)
}

func TestExtract_LabelledLines(t *testing.T) {
	got := Extract("Diagnosis - Acute bronchitis\nMedicines: Azithromycin 500mg\nNext Visit: 10 days")

	assert.Equal(t, "Acute bronchitis", got.Diagnosis)
	assert.Equal(t, "Azithromycin 500mg", got.Medicines)
	assert.Equal(t, "10 days", got.FollowUp)
}

func TestExtract_FirstMatchWins(t *testing.T) {
	got := Extract("Diagnosis: flu\nDiagnosis: cold")
	assert.Equal(t, "flu", got.Diagnosis)
}

func TestExtract_RawTextIsCleanedInput(t *testing.T) {
	got := Extract("\ta  b\n")
	assert.Equal(t, "a b", got.RawText)
}

func TestExtract_EmptyText(t *testing.T) {
	got := Extract("")
	assert.Equal(t, Fields{}, got)
}

func TestExtract_DateHyphenSeparated(t *testing.T) {
	assert.Equal(t, "1-2-23", Extract("seen 1-2-23 morning").Date)
}
