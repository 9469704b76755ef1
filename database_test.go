package recdb_test

import (
	"strings"
	"testing"

	"github.com/go-recdb/recdb"
	"github.com/go-recdb/recdb/recfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseDerivesDescriptor(t *testing.T) {
	src := "%rec: Person\n%key: Email\n%mandatory: Name Email\n%type: Age range 0 120\n\n" +
		"Name: Alice\nEmail: alice@example.com\nAge: 30\n"

	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)
	require.Equal(t, 1, db.Len())

	rs, desc, ok := db.ByRecName("Person")
	require.True(t, ok)
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, "Email", desc.Key)
	assert.ElementsMatch(t, []string{"Name", "Email"}, desc.Mandatory)

	typ, ok := desc.Registry.Lookup("Age")
	require.True(t, ok)
	min, max := typ.RangeBounds()
	assert.Equal(t, 0, min)
	assert.Equal(t, 120, max)

	assert.NoError(t, db.Validate())
}

func TestParseDatabaseEmptyRecValueIsUsageError(t *testing.T) {
	_, err := recdb.ParseDatabaseString("%rec:\n\nx: 1\n", "test", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "%rec")
}

func TestParseDatabaseEmptyKeyValueIsUsageError(t *testing.T) {
	_, err := recdb.ParseDatabaseString("%rec: Thing\n%key:\n\nx: 1\n", "test", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "%key")
}

func TestParseDatabaseRecordSetWithoutDescriptorHasNilDescriptor(t *testing.T) {
	src := "Name: Alice\n\nName: Bob\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)
	require.Equal(t, 1, db.Len())

	rs, desc, ok := db.RecordSetAt(0)
	require.True(t, ok)
	assert.Nil(t, desc)
	assert.Equal(t, 2, rs.Len())
	assert.NoError(t, db.Validate())
}

func TestValidateRejectsMissingMandatoryField(t *testing.T) {
	src := "%rec: Person\n%mandatory: Email\n\nName: Alice\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	err = db.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mandatory field")
}

func TestValidateRejectsProhibitedField(t *testing.T) {
	src := "%rec: Person\n%prohibit: SSN\n\nName: Alice\nSSN: 000-00-0000\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	err = db.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prohibited")
}

func TestValidateRejectsFieldNotAllowed(t *testing.T) {
	src := "%rec: Person\n%allowed: Name\n\nName: Alice\nNickname: Al\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	err = db.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in %allowed")
}

func TestValidateRejectsDuplicateUniqueField(t *testing.T) {
	src := "%rec: Person\n%unique: Email\n\nEmail: a@example.com\n\nEmail: a@example.com\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	err = db.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate value")
}

func TestValidateRejectsSizeOverflow(t *testing.T) {
	src := "%rec: Person\n%size: 1\n\nName: Alice\n\nName: Bob\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	err = db.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "%size")
}

func TestValidateRejectsTypeMismatch(t *testing.T) {
	src := "%rec: Person\n%type: Age int\n\nAge: not-a-number\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	err = db.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Age")
}

func TestValidateRejectsFailedConstraint(t *testing.T) {
	src := "%rec: Person\n%constraint: Age > 17\n\nAge: 12\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	err = db.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "%constraint")
}

func TestTypedefAliasReferencedByType(t *testing.T) {
	src := "%rec: Person\n%typedef: Country enum US CA MX\n%type: HomeCountry Country\n\nHomeCountry: US\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	_, desc, ok := db.ByRecName("Person")
	require.True(t, ok)
	typ, ok := desc.Registry.Lookup("HomeCountry")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"US", "CA", "MX"}, typ.EnumNames())
	assert.NoError(t, db.Validate())
}

func TestTypeFieldAcceptsCSVFieldList(t *testing.T) {
	src := "%rec: Pair\n%type: A,B int\n\nA: 1\nB: 2\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	_, desc, ok := db.ByRecName("Pair")
	require.True(t, ok)
	_, ok = desc.Registry.Lookup("A")
	assert.True(t, ok)
	_, ok = desc.Registry.Lookup("B")
	assert.True(t, ok)
}

func TestWriteToRoundTripsThroughNormalMode(t *testing.T) {
	src := "%rec: Person\n%mandatory: Name\n\nName: Alice\n"
	db, err := recdb.ParseDatabaseString(src, "test", nil)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, db.WriteTo(&sb, recfmt.Normal))

	again, err := recdb.ParseDatabaseString(sb.String(), "roundtrip", nil)
	require.NoError(t, err)
	assert.Equal(t, db.Len(), again.Len())
}
