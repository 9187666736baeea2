package transforms

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/juju/errors"
	"github.com/mitchellh/hashstructure/v2"
)

// Seeder picks the faker seed for one replacement attempt. Equal inputs must
// give equal seeds so a value is masked the same way everywhere.
type Seeder interface {
	Seed(column string, value string, attempt int) uint64
}

type seedKey struct {
	Salt    string
	Column  string
	Value   string
	Attempt int
}

// HashSeeder derives seeds from a hash of the salted input.
type HashSeeder struct {
	Salt string
}

func (s HashSeeder) Seed(column string, value string, attempt int) uint64 {
	hash, err := hashstructure.Hash(seedKey{Salt: s.Salt, Column: column, Value: value, Attempt: attempt}, hashstructure.FormatV2, nil)
	if err != nil {
		return uint64(attempt) + 1
	}
	return hash
}

// Generator produces a substitute for original.
type Generator func(f *gofakeit.Faker, original string) string

var (
	birthFrom = time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC)
	birthTo   = time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC)

	emailLocalRe  = regexp.MustCompile(`[^a-z0-9._+-]`)
	emailDomainRe = regexp.MustCompile(`[^a-z0-9.-]`)
)

func fakeEmail(f *gofakeit.Faker, _ string) string {
	email := strings.ToLower(f.Email())
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return emailLocalRe.ReplaceAllString(email, "") + "@example.com"
	}
	local := emailLocalRe.ReplaceAllString(email[:at], "")
	if local == "" {
		local = strings.ToLower(f.Username())
	}
	return local + "@" + emailDomainRe.ReplaceAllString(email[at+1:], "")
}

// fakeShape keeps the layout of original and redraws every letter and digit
// in any script. Letters come back as ASCII letters of the same case.
func fakeShape(f *gofakeit.Faker, original string) string {
	var b strings.Builder
	for _, r := range original {
		switch {
		case unicode.IsDigit(r):
			b.WriteString(f.Digit())
		case unicode.IsUpper(r):
			b.WriteString(strings.ToUpper(f.Letter()))
		case unicode.IsLetter(r):
			b.WriteString(strings.ToLower(f.Letter()))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fakeDistinct draws letters as long as original and flips their case when
// the draw happens to equal it.
func fakeDistinct(f *gofakeit.Faker, original string) string {
	out := f.LetterN(uint(utf8.RuneCountInString(original)))
	if out != original {
		return out
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, out)
}

var builtinGenerators = map[string]Generator{
	"email":      fakeEmail,
	"name":       func(f *gofakeit.Faker, _ string) string { return f.Name() },
	"first_name": func(f *gofakeit.Faker, _ string) string { return f.FirstName() },
	"last_name":  func(f *gofakeit.Faker, _ string) string { return f.LastName() },
	"phone":      func(f *gofakeit.Faker, _ string) string { return f.Phone() },
	"username":   func(f *gofakeit.Faker, _ string) string { return f.Username() },
	"password": func(f *gofakeit.Faker, _ string) string {
		return f.Password(true, true, true, false, false, 12)
	},
	"address":     func(f *gofakeit.Faker, _ string) string { return f.Address().Address },
	"street":      func(f *gofakeit.Faker, _ string) string { return f.Street() },
	"city":        func(f *gofakeit.Faker, _ string) string { return f.City() },
	"state":       func(f *gofakeit.Faker, _ string) string { return f.State() },
	"zip":         func(f *gofakeit.Faker, _ string) string { return f.Zip() },
	"country":     func(f *gofakeit.Faker, _ string) string { return f.Country() },
	"company":     func(f *gofakeit.Faker, _ string) string { return f.Company() },
	"job_title":   func(f *gofakeit.Faker, _ string) string { return f.JobTitle() },
	"ssn":         func(f *gofakeit.Faker, _ string) string { return f.SSN() },
	"credit_card": func(f *gofakeit.Faker, _ string) string { return f.CreditCardNumber(nil) },
	"ipv4":        func(f *gofakeit.Faker, _ string) string { return f.IPv4Address() },
	"url":         func(f *gofakeit.Faker, _ string) string { return f.URL() },
	"uuid":        func(f *gofakeit.Faker, _ string) string { return f.UUID() },
	"date_of_birth": func(f *gofakeit.Faker, _ string) string {
		return f.DateRange(birthFrom, birthTo).Format("2006-01-02")
	},
	"word":  func(f *gofakeit.Faker, _ string) string { return f.Word() },
	"shape": fakeShape,
}

var builtinAliases = map[string]string{
	"mail":           "email",
	"e_mail":         "email",
	"email_address":  "email",
	"full_name":      "name",
	"fullname":       "name",
	"contact":        "name",
	"firstname":      "first_name",
	"given_name":     "first_name",
	"lastname":       "last_name",
	"surname":        "last_name",
	"family_name":    "last_name",
	"tel":            "phone",
	"telephone":      "phone",
	"mobile":         "phone",
	"cellphone":      "phone",
	"phone_number":   "phone",
	"user_name":      "username",
	"login":          "username",
	"account":        "username",
	"passwd":         "password",
	"pwd":            "password",
	"addr":           "address",
	"street_address": "address",
	"zipcode":        "zip",
	"zip_code":       "zip",
	"postcode":       "zip",
	"postal_code":    "zip",
	"company_name":   "company",
	"organization":   "company",
	"ip":             "ipv4",
	"ip_address":     "ipv4",
	"website":        "url",
	"homepage":       "url",
	"dob":            "date_of_birth",
	"birthday":       "date_of_birth",
	"birth_date":     "date_of_birth",
	"card_number":    "credit_card",
}

// GeneratorName normalizes a rule or column name: "contact::email()" and
// "E-Mail" become "email" and "e_mail".
func GeneratorName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	name = strings.TrimSuffix(name, "()")
	return strings.NewReplacer("-", "_", " ", "_").Replace(name)
}

type Generators struct {
	entries  map[string]Generator
	aliases  map[string]string
	fallback Generator
}

func NewGenerators() *Generators {
	g := &Generators{
		entries:  make(map[string]Generator, len(builtinGenerators)),
		aliases:  make(map[string]string, len(builtinAliases)),
		fallback: fakeShape,
	}
	for name, gen := range builtinGenerators {
		g.entries[name] = gen
	}
	for alias, name := range builtinAliases {
		g.aliases[alias] = name
	}
	return g
}

// Register adds or replaces a generator.
func (g *Generators) Register(name string, gen Generator) {
	g.entries[GeneratorName(name)] = gen
}

// Lookup resolves name through the alias table.
func (g *Generators) Lookup(name string) (string, Generator, bool) {
	key := GeneratorName(name)
	if gen, ok := g.entries[key]; ok {
		return key, gen, true
	}
	if target, ok := g.aliases[key]; ok {
		if gen, ok := g.entries[target]; ok {
			return target, gen, true
		}
	}
	return "", nil, false
}

// MustLookup is Lookup for names that come from configuration.
func (g *Generators) MustLookup(name string) (string, Generator, error) {
	key, gen, ok := g.Lookup(name)
	if !ok {
		return "", nil, errors.NotFoundf("generator %s", name)
	}
	return key, gen, nil
}

func (g *Generators) Fallback() Generator {
	return g.fallback
}

const maxAttempts = 16

// Generate runs gen with seeds from seeder until the result differs from
// original. After maxAttempts it replaces original with letters of the same
// length, so only the empty string can come back unchanged.
func Generate(gen Generator, seeder Seeder, column string, original string) string {
	var f *gofakeit.Faker
	for attempt := 0; attempt < maxAttempts; attempt++ {
		seed := seeder.Seed(column, original, attempt)
		if seed == 0 {
			seed = 1
		}
		f = gofakeit.New(seed)
		if out := gen(f, original); out != original {
			return out
		}
	}
	if original == "" {
		return original
	}
	return fakeDistinct(f, original)
}
