package workflow

import "strings"

// Candidate is one entry from the approver directory: a user eligible to
// act in some role.
type Candidate struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	RoleLabel string `json:"roleLabel,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// roleSynonyms are accepted in a candidate's role label when the role
// code itself does not match.
var roleSynonyms = map[ApproverRole][]string{
	RoleAdmin:       {"admin", "administrator"},
	RoleVPApprover:  {"vp", "vice president"},
	RolePresident:   {"president"},
	RoleComptroller: {"comptroller"},
	RoleHR:          {"hr"},
}

// ResolveApprover picks a concrete person for a suggestion from the
// candidate list: exact role-code match, then label-substring match,
// then role synonyms. For the admin role a configured preferred
// individual (matched by name or email substring) wins over any other
// eligible admin. Nil means no eligible approver — a normal outcome the
// caller surfaces as "broadcast to all holders of the role", never as
// "no next step".
func ResolveApprover(sg *Suggestion, candidates []Candidate, preferredAdmin string) *Candidate {
	if sg == nil {
		return nil
	}

	want := strings.ToLower(string(sg.Role))
	var matching []Candidate
	for _, c := range candidates {
		if candidateMatches(c, sg.Role, want) {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return nil
	}

	if sg.Role == RoleAdmin && preferredAdmin != "" {
		needle := strings.ToLower(preferredAdmin)
		for _, c := range matching {
			if strings.Contains(strings.ToLower(c.Name), needle) ||
				strings.Contains(strings.ToLower(c.Email), needle) {
				picked := c
				return &picked
			}
		}
	}

	first := matching[0]
	return &first
}

func candidateMatches(c Candidate, role ApproverRole, want string) bool {
	if strings.ToLower(c.Role) == want {
		return true
	}
	label := strings.ToLower(c.RoleLabel)
	if label == "" {
		return false
	}
	if strings.Contains(label, want) {
		return true
	}
	for _, syn := range roleSynonyms[role] {
		if strings.Contains(label, syn) {
			return true
		}
	}
	return false
}
