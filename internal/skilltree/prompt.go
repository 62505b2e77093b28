package skilltree

import (
	"fmt"
	"strings"
)

const treeSystemPrompt = `You design learning paths for school students. You map an occupation onto the school subjects and skills a child would learn between ages 5 and 18.`

func buildTreeUserMessage(job string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a comprehensive skill tree for the occupation: %q.\n", job)
	fmt.Fprintf(&b, `
The response should include:
- occupation: The job title %[1]q
- subjects: A list of relevant subjects (e.g., Math, Science, Language, History, etc.)
- ages: Array from 5 to 18
- schools: Array of "Elementary", "Middle School", "High School"
- skills: Array of skill objects for each age and subject combination that are relevant to becoming a %[1]s

For each skill, provide:
- id: A unique identifier (e.g., "math-5-1", "science-12-2")
- subject: The subject area, exactly as listed in subjects
- age: The age when this skill is typically learned (5-18)
- school: Either "Elementary", "Middle School", or "High School"
- level: Difficulty level from 1 (easiest) to 5 (hardest)
- completed: Set all to false by default
- description: A concise name for the skill (max 100 chars)
- explanation: Why this skill is relevant for the %[1]s occupation (at least 20 chars)
- prerequisites: Ids of earlier skills this one builds on, or an empty array
`, job)

	b.WriteString(`
Create a progressive learning path where skills build on each other naturally through the ages.
Include at least 20-30 skills spread across different subjects and ages.`)

	return b.String()
}
