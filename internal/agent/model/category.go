package model

// Category is the closed set of HR topics produced by the classifier.
type Category string

const (
	CategoryPolicy       Category = "POLICY"
	CategoryLeave        Category = "LEAVE"
	CategoryCompensation Category = "COMPENSATION"
	CategoryTraining     Category = "TRAINING"
	CategoryGeneral      Category = "GENERAL"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryPolicy,
	CategoryLeave,
	CategoryCompensation,
	CategoryTraining,
	CategoryGeneral,
}

func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is a member of the closed enumeration.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
