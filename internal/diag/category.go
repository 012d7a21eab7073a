package diag

// Category is one of the standard's nine audit-checklist lines.
type Category uint8

const (
	CatNaming Category = iota
	CatFunctions
	CatHeaders
	CatStyle
	CatDebugging
	CatSystemUsage
	CatSecurity
	CatErrorHandling
	CatCondComp

	// CategoryCount is the number of audit categories.
	CategoryCount
)

var categoryNames = [...]string{
	CatNaming:        "Naming",
	CatFunctions:     "Functions",
	CatHeaders:       "Headers",
	CatStyle:         "Style",
	CatDebugging:     "Debugging",
	CatSystemUsage:   "system() usage",
	CatSecurity:      "Security/Safe-C",
	CatErrorHandling: "Error-Handling",
	CatCondComp:      "Conditional-Compilation",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// Categories returns all audit categories in checklist order.
func Categories() []Category {
	out := make([]Category, 0, CategoryCount)
	for c := Category(0); c < CategoryCount; c++ {
		out = append(out, c)
	}
	return out
}
