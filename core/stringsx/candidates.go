package stringsx

// Candidates returns the member names tried for name, in lookup order: the
// name itself, then each prefix joined with the capitalised name. Duplicates
// are dropped.
func Candidates(name string, prefixes ...string) []string {
	if name == "" {
		return nil
	}

	exported := UpperFirstChar(name)
	names := make([]string, 0, 2+len(prefixes))
	seen := make(map[string]struct{}, cap(names))

	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		names = append(names, s)
	}

	for _, prefix := range prefixes {
		if prefix == "" {
			add(name)
			add(exported)
			continue
		}
		add(prefix + exported)
	}

	return names
}
