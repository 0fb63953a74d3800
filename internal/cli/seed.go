package cli

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/form"
)

var (
	seedNames     = []string{"Ivan", "Peter", "Alexei", "Olga", "Maria", "Elena", "Andrew"}
	seedDomains   = []string{"mail.ru", "gmail.com", "yandex.ru", "example.com"}
	seedPrefixes  = []string{"LLC", "JSC", "Ltd", "Inc"}
	seedCompanies = []string{"Technocenter", "Infosystems", "Datacenter", "Progress", "Megasoft"}
	seedProjects  = []string{"Website", "CRM", "Mobile app", "Corporate portal"}
	seedDescs     = []string{
		"We need a modern responsive website for our company.",
		"A customer accounting system integrated with our ERP.",
		"Looking for developers to build a mobile application.",
		"A corporate portal with single sign-on.",
	}
)

func pick(r *rand.Rand, items []string) string {
	return items[r.IntN(len(items))]
}

// RandomRecord fills every field of schema with plausible test data. Values
// pass through each field's validator so they are stored normalized.
func RandomRecord(schema form.Schema, r *rand.Rand) domain.Record {
	name := pick(r, seedNames)
	rec := make(domain.Record, 0, len(schema))
	for _, f := range schema {
		var raw string
		switch f.Name {
		case "name":
			raw = name
		case "email":
			raw = fmt.Sprintf("%s%d@%s", strings.ToLower(name), r.IntN(999)+1, pick(r, seedDomains))
		case "phone":
			raw = fmt.Sprintf("+7%d", 9000000000+r.Int64N(1000000000))
		case "company":
			raw = pick(r, seedPrefixes) + " " + pick(r, seedCompanies)
		case "project_type":
			raw = pick(r, seedProjects)
		case "description":
			raw = pick(r, seedDescs)
		default:
			raw = "Test ticket. Generated automatically."
		}
		if value, err := f.Validator(raw); err == nil {
			raw = value
		}
		rec = rec.With(f.Name, raw)
	}
	return rec
}
