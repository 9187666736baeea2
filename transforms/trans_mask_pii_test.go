package transforms

import (
	"regexp"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/juju/errors"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
	"github.com/sqlpub/qin-mask/metas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emailRegex = `^[^@\s]+@[^@\s]+\.[a-z]+$`

var emailRe = regexp.MustCompile(emailRegex)

func accountConfig() *config.MaskingConfig {
	return &config.MaskingConfig{
		Columns:  []string{"account"},
		Patterns: []config.Pattern{{Name: "email", Regex: emailRegex}},
		Rules:    map[string]string{"account": "email"},
		Salt:     "test",
	}
}

func dmlMsg(t *testing.T, sql string) *core.Msg {
	t.Helper()
	insert, err := metas.NewInsert(sql)
	require.NoError(t, err)
	return &core.Msg{Type: core.MsgDML, Database: "shop", Table: insert.Table, Statement: sql, Insert: insert}
}

func TestMaskPIITransform(t *testing.T) {
	mpt, err := NewMaskPIITrans(accountConfig(), nil)
	require.NoError(t, err)

	msg := dmlMsg(t, "INSERT INTO users (id, account, note) VALUES (1,'john@corp.com','hello'),(2,NULL,'x@y.io');")
	drop, err := mpt.Transform(msg)
	require.NoError(t, err)
	assert.False(t, drop)

	rows := msg.Insert.Rows
	assert.Equal(t, metas.NumberValue("1"), rows[0][0])
	assert.NotEqual(t, "john@corp.com", rows[0][1].Text)
	assert.Equal(t, metas.ValueText, rows[0][1].Kind)
	assert.Regexp(t, emailRe, rows[0][1].Text)
	assert.Equal(t, metas.TextValue("hello"), rows[0][2])

	assert.True(t, rows[1][1].IsNull())
	assert.NotEqual(t, "x@y.io", rows[1][2].Text)
	assert.Regexp(t, emailRe, rows[1][2].Text)
}

func TestMaskPIIColumnsFromSchema(t *testing.T) {
	mpt, err := NewMaskPIITrans(accountConfig(), nil)
	require.NoError(t, err)

	msg := dmlMsg(t, "INSERT INTO users VALUES (1,'plain-text');")
	msg.Columns = []string{"id", "account"}
	_, err = mpt.Transform(msg)
	require.NoError(t, err)
	assert.Regexp(t, emailRe, msg.Insert.Rows[0][1].Text)

	// without names only the value itself can match
	msg = dmlMsg(t, "INSERT INTO users VALUES (1,'plain-text');")
	_, err = mpt.Transform(msg)
	require.NoError(t, err)
	assert.Equal(t, metas.TextValue("plain-text"), msg.Insert.Rows[0][1])
}

func TestMaskPIIDeterministic(t *testing.T) {
	a, err := NewMaskPIITrans(accountConfig(), nil)
	require.NoError(t, err)
	b, err := NewMaskPIITrans(accountConfig(), nil)
	require.NoError(t, err)

	va, ok, err := a.Mask("account", metas.TextValue("john@corp.com"))
	require.NoError(t, err)
	require.True(t, ok)
	vb, _, err := b.Mask("account", metas.TextValue("john@corp.com"))
	require.NoError(t, err)
	assert.Equal(t, va, vb)

	salted := accountConfig()
	salted.Salt = "other"
	c, err := NewMaskPIITrans(salted, nil)
	require.NoError(t, err)
	vc, _, err := c.Mask("account", metas.TextValue("john@corp.com"))
	require.NoError(t, err)
	assert.NotEqual(t, va, vc)
}

type fixedSeeder uint64

func (s fixedSeeder) Seed(string, string, int) uint64 {
	return uint64(s)
}

func TestMaskPIIShapeFallback(t *testing.T) {
	conf := &config.MaskingConfig{Columns: []string{"code"}}
	mpt, err := NewMaskPIITrans(conf, fixedSeeder(42))
	require.NoError(t, err)

	v, ok, err := mpt.Mask("code", metas.TextValue("AB-12 x"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Regexp(t, `^[A-Z]{2}-[0-9]{2} [a-z]$`, v.Text)

	again, _, err := mpt.Mask("code", metas.TextValue("AB-12 x"))
	require.NoError(t, err)
	assert.Equal(t, v, again)

	v, ok, err = mpt.Mask("code", metas.NullValue)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, v.IsNull())
}

func TestMaskPIIBuiltinByColumn(t *testing.T) {
	conf := &config.MaskingConfig{Columns: []string{"Mobile", "DOB"}, CaseInsensitive: true}
	mpt, err := NewMaskPIITrans(conf, nil)
	require.NoError(t, err)

	name, _, err := mpt.resolve("MOBILE", "555-0100")
	require.NoError(t, err)
	assert.Equal(t, "phone", name)

	v, ok, err := mpt.Mask("dob", metas.TextValue("1980-02-03"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Regexp(t, `^(19[4-9][0-9]|200[0-5])-[0-9]{2}-[0-9]{2}$`, v.Text)
}

func TestMaskPIIUnknownRule(t *testing.T) {
	conf := &config.MaskingConfig{Columns: []string{"email"}, Rules: map[string]string{"email": "no_such_generator"}}
	_, err := NewMaskPIITrans(conf, nil)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestMaskPIINewTransformInline(t *testing.T) {
	mpt := &MaskPIITrans{}
	err := mpt.NewTransform(map[string]interface{}{
		"columns":          []interface{}{"email"},
		"case-insensitive": true,
		"rules":            map[string]interface{}{"email": "contact::email()"},
	})
	require.NoError(t, err)

	v, ok, err := mpt.Mask("EMAIL", metas.TextValue("someone"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Regexp(t, emailRe, v.Text)

	err = (&MaskPIITrans{}).NewTransform(map[string]interface{}{"masking-config": 3})
	assert.True(t, errors.IsNotValid(err))
}

func TestGeneratorName(t *testing.T) {
	cases := map[string]string{
		"email":            "email",
		"contact::email()": "email",
		"E-Mail":           "e_mail",
		" Phone Number ":   "phone_number",
		"a::b::first_name": "first_name",
	}
	for in, want := range cases {
		assert.Equal(t, want, GeneratorName(in), in)
	}
}

func TestGeneratorsLookup(t *testing.T) {
	g := NewGenerators()

	name, _, ok := g.Lookup("Account")
	assert.True(t, ok)
	assert.Equal(t, "username", name)

	_, _, ok = g.Lookup("favourite_colour")
	assert.False(t, ok)

	g.Register("Favourite Colour", func(_ *gofakeit.Faker, _ string) string { return "teal" })
	name, gen, ok := g.Lookup("favourite-colour")
	require.True(t, ok)
	assert.Equal(t, "favourite_colour", name)
	assert.Equal(t, "teal", Generate(gen, HashSeeder{}, "c", "red"))

	_, _, err := g.MustLookup("nope")
	assert.True(t, errors.IsNotFound(err))
}

func TestGenerateGivesUp(t *testing.T) {
	same := func(_ *gofakeit.Faker, original string) string { return original }
	out := Generate(same, fixedSeeder(0), "c", "keep")
	assert.NotEqual(t, "keep", out)
	assert.Regexp(t, `^[a-zA-Z]{4}$`, out)
	assert.Equal(t, out, Generate(same, fixedSeeder(0), "c", "keep"))

	assert.Empty(t, Generate(same, fixedSeeder(0), "c", ""))
}

func TestMaskPIIShapeAnyScript(t *testing.T) {
	conf := &config.MaskingConfig{Columns: []string{"customer"}, Salt: "test"}
	mpt, err := NewMaskPIITrans(conf, nil)
	require.NoError(t, err)

	cases := []struct {
		in   string
		want string
	}{
		{in: "王小明", want: `^[a-z]{3}$`},
		{in: "Ørjan Ødegård", want: `^[A-Z][a-z]{4} [A-Z][a-z]{6}$`},
		{in: "---", want: `^[a-zA-Z]{3}$`},
		{in: "№ ٣٤", want: `^№ [0-9]{2}$`},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			v, ok, err := mpt.Mask("customer", metas.TextValue(c.in))
			require.NoError(t, err)
			require.True(t, ok)
			assert.NotEqual(t, c.in, v.Text)
			assert.Regexp(t, c.want, v.Text)
		})
	}
}

func TestMaskPIIAccountAndEmail(t *testing.T) {
	const pattern = `^[\w.+-]+@[\w-]+\.[\w.-]+$`
	emailPattern := regexp.MustCompile(pattern)

	for _, salt := range []string{"", "a", "orders", "2024-01-01", "prod"} {
		t.Run("salt="+salt, func(t *testing.T) {
			mpt, err := NewMaskPIITrans(&config.MaskingConfig{
				Columns:  []string{"account"},
				Patterns: []config.Pattern{{Name: "email", Regex: pattern}},
				Rules:    map[string]string{"email": "contact::email()"},
				Salt:     salt,
			}, nil)
			require.NoError(t, err)

			msg := dmlMsg(t, "INSERT INTO `users` (`account`,`email`) VALUES (1234,'a@b.com');")
			drop, err := mpt.Transform(msg)
			require.NoError(t, err)
			require.False(t, drop)

			row := msg.Insert.Rows[0]
			require.Len(t, row, 2)
			assert.NotEqual(t, "1234", row[0].Text)
			assert.NotEqual(t, "a@b.com", row[1].Text)
			assert.Regexp(t, emailPattern, row[1].Text)
		})
	}
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher(&config.MaskingConfig{
		Columns:  []string{"Account"},
		Patterns: []config.Pattern{{Name: "ssn", Regex: `^\d{3}-\d{2}-\d{4}$`}, {Regex: `secret`}},
	})
	require.NoError(t, err)

	assert.True(t, m.MatchColumn("Account"))
	assert.False(t, m.MatchColumn("account"))

	name, ok := m.MatchPattern("123-45-6789")
	assert.True(t, ok)
	assert.Equal(t, "ssn", name)
	name, ok = m.MatchPattern("top secret")
	assert.True(t, ok)
	assert.Empty(t, name)

	assert.True(t, m.Filter("Account"))
	assert.False(t, m.Filter("public"))

	_, err = NewMatcher(&config.MaskingConfig{Patterns: []config.Pattern{{Name: "bad", Regex: "(["}}})
	assert.Error(t, err)
}
