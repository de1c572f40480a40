package domain

// Category identifies a goal template family.
type Category string

const (
	CategoryProductLaunch Category = "product_launch"
	CategoryLearning      Category = "learning"
	CategoryResearch      Category = "research"
	CategoryEvent         Category = "event"
	CategoryGeneric       Category = "generic"
)

func (c Category) String() string {
	return string(c)
}

// DefaultDomain is used when a goal does not name a domain.
const DefaultDomain = "general"
