package suggest

import (
	"fmt"
	"strings"
)

const suggestSystemPrompt = `You help children discover careers. You suggest jobs an elementary school student would recognize, using short and simple titles.`

func buildSuggestUserMessage(query string, count int, streaming bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Given the user's interest or query: %q, suggest exactly %d relevant career paths or job titles.\n", query, count)

	b.WriteString(`
IMPORTANT RULES:
- Use VERY SHORT job titles (1-3 words maximum)
- Use simple, child-friendly language that an elementary school student would understand
- Use common, well-known job titles that kids recognize
- Avoid technical jargon, complex terms, or industry-specific language
- Think of jobs that would appear in children's books or career day presentations

Examples of GOOD titles: "Dog Walker", "Veterinarian", "Pet Store Owner", "Animal Trainer", "Zoo Keeper"
Examples of BAD titles: "Canine Behaviorist", "Veterinary Technician", "Pet Daycare Attendant", "Boarding Facility Manager"

Consider:
- Related careers in the same field
- Jobs that use similar skills
- Jobs kids would recognize and understand
`)

	if streaming {
		fmt.Fprintf(&b, `
Output format:
Write exactly %d lines. Each line is one compact JSON object of the form {"title": "...", "relevance": "..."} where relevance is one short sentence saying why the job fits the interest. Write nothing else: no list markers, no code fences, no surrounding array.`, count)
	} else {
		fmt.Fprintf(&b, "\nReturn exactly %d diverse and relevant job suggestions with SHORT, SIMPLE titles.", count)
	}

	return b.String()
}
