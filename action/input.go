package action

// RawOption is one option occurrence as the tokenizer saw it
type RawOption struct {
	Name  string
	Value string
}

// ParsedInput is the flat record a tokenizer produces for one invocation.
// Option names may repeat; the last occurrence wins on lookup.
type ParsedInput struct {
	ActionPath []string
	Options    []RawOption
	Arguments  []string
}

// WithOption returns a copy of in with one more option pair appended
func (in ParsedInput) WithOption(name, value string) ParsedInput {
	out := in.clone()
	out.Options = append(out.Options, RawOption{Name: name, Value: value})
	return out
}

func (in ParsedInput) clone() ParsedInput {
	return ParsedInput{
		ActionPath: append([]string(nil), in.ActionPath...),
		Options:    append([]RawOption(nil), in.Options...),
		Arguments:  append([]string(nil), in.Arguments...),
	}
}
