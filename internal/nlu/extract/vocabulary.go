package extract

// DefaultOwners is the built-in owner roster. Deployments replace this with
// the user list synced from the CRM; the entries here cover the core sales
// team and their common short forms.
func DefaultOwners() []OwnerEntry {
	return []OwnerEntry{
		{DisplayName: "Himanshu Patel", Aliases: []string{"him"}},
		{DisplayName: "Sarah Chen", Aliases: nil},
		{DisplayName: "Marcus Webb", Aliases: []string{"marc"}},
		{DisplayName: "Priya Nair", Aliases: nil},
		{DisplayName: "Diego Alvarez", Aliases: nil},
		{DisplayName: "Emily Rhodes", Aliases: []string{"em"}},
		{DisplayName: "Tom Oduya", Aliases: nil},
	}
}
