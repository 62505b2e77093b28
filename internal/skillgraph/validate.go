package skillgraph

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	fieldRules   *validator.Validate
)

// reservedID matches the node IDs a layout gives its markers and root.
var reservedID = regexp.MustCompile(`^(age-\d+|school-\d+|school-timeline-\d+|age-timeline-\d+|occupation-master)$`)

// IsReservedID reports whether id collides with a layout marker ID.
func IsReservedID(id string) bool {
	return reservedID.MatchString(id)
}

func rules() *validator.Validate {
	validateOnce.Do(func() {
		fieldRules = validator.New()
		fieldRules.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return fieldRules
}

// Validate performs field and structural checks on a graph.
// Returns a combined error describing all problems found, or nil if valid.
func Validate(g Graph) error {
	var errs []string

	if err := rules().Struct(g); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("skill graph validation: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	subjects := make(map[string]bool, len(g.Subjects))
	for _, s := range g.Subjects {
		if subjects[s] {
			errs = append(errs, fmt.Sprintf("duplicate subject: %q", s))
		}
		subjects[s] = true
	}
	schools := make(map[string]bool, len(g.Schools))
	for _, s := range g.Schools {
		if schools[s] {
			errs = append(errs, fmt.Sprintf("duplicate school: %q", s))
		}
		schools[s] = true
	}

	idSet := make(map[string]bool, len(g.Skills))
	for _, s := range g.Skills {
		if s.ID != "" && idSet[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate skill ID: %q", s.ID))
		}
		idSet[s.ID] = true
		if IsReservedID(s.ID) {
			errs = append(errs, fmt.Sprintf("skill ID %q is reserved for layout markers", s.ID))
		}

		// A node outside the declared axes has no position.
		if !subjects[s.Subject] {
			errs = append(errs, fmt.Sprintf("skill %q has undeclared subject %q", s.ID, s.Subject))
		}
		if !schools[s.School] {
			errs = append(errs, fmt.Sprintf("skill %q has undeclared school %q", s.ID, s.School))
		}
	}

	// Check for dangling prerequisites
	for _, s := range g.Skills {
		for _, prereqID := range s.Prerequisites {
			if prereqID == s.ID {
				errs = append(errs, fmt.Sprintf("skill %q lists itself as a prerequisite", s.ID))
				continue
			}
			if !idSet[prereqID] {
				errs = append(errs, fmt.Sprintf("skill %q references nonexistent prerequisite %q", s.ID, prereqID))
			}
		}
	}

	if cycle := cycleMembers(g.Skills, idSet); len(cycle) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving skills: %s", strings.Join(cycle, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("skill graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// cycleMembers runs Kahn's algorithm over the prerequisite edges that
// resolve to known skills and returns the IDs left with unresolved
// in-degree, in input order.
func cycleMembers(skills []SkillNode, known map[string]bool) []string {
	inDegree := make(map[string]int, len(skills))
	adjList := make(map[string][]string)
	for _, s := range skills {
		for _, prereqID := range s.Prerequisites {
			if !known[prereqID] || prereqID == s.ID {
				continue
			}
			inDegree[s.ID]++
			adjList[prereqID] = append(adjList[prereqID], s.ID)
		}
	}

	var queue []string
	for _, s := range skills {
		if inDegree[s.ID] == 0 {
			queue = append(queue, s.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	var cycle []string
	for _, s := range skills {
		if inDegree[s.ID] > 0 {
			cycle = append(cycle, s.ID)
		}
	}
	return cycle
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Graph.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q check", field, fe.Tag())
	}
}
