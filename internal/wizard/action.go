package wizard

// ActionType tags a record mutation.
type ActionType string

const (
	ActionSetField        ActionType = "SET_FIELD"
	ActionSetNested       ActionType = "SET_NESTED"
	ActionAddArrayItem    ActionType = "ADD_ARRAY_ITEM"
	ActionRemoveArrayItem ActionType = "REMOVE_ARRAY_ITEM"
	ActionSetLanguages    ActionType = "SET_LANGUAGES"
)

// Action is one mutation of the record. Path is a field path for SET_FIELD and
// SET_NESTED and an array key for the array actions. Value carries the new
// value, the item to append (nil appends the default item) or, for
// SET_LANGUAGES, comma separated text.
type Action struct {
	Type  ActionType `json:"type" yaml:"type"`
	Path  string     `json:"path" yaml:"path"`
	Index int        `json:"index,omitempty" yaml:"index,omitempty"`
	Value any        `json:"value,omitempty" yaml:"value,omitempty"`
}

// Set builds SET_FIELD or SET_NESTED depending on the shape of path.
func Set(path string, value any) Action {
	typ := ActionSetField
	if p, err := ParsePath(path); err == nil && p.Nested() {
		typ = ActionSetNested
	}
	return Action{Type: typ, Path: path, Value: value}
}

func AddItem(key string, item any) Action {
	return Action{Type: ActionAddArrayItem, Path: key, Value: item}
}

func RemoveItem(key string, index int) Action {
	return Action{Type: ActionRemoveArrayItem, Path: key, Index: index}
}

func SetLanguages(text string) Action {
	return Action{Type: ActionSetLanguages, Path: "languagesKnown", Value: text}
}
