package action

// walkPath resolves in.ActionPath against root. A token always descends into
// a matching child first; otherwise it and every token after it become
// positional arguments of the current action, which must accept them.
// Residual arguments are held to the same rule. The returned node is where
// the walk stopped, also on failure.
func walkPath(root *Config, in ParsedInput, trace func(from, to *Config)) (*Config, []string, *IllegalArgumentError) {
	node := root
	var pathArgs []string

	for i, token := range in.ActionPath {
		if child, ok := node.children[token]; ok {
			if trace != nil {
				trace(node, child)
			}
			node = child
			continue
		}
		if !node.acceptsArguments {
			return node, nil, &IllegalArgumentError{Token: token, Action: node.CommandPath()}
		}
		pathArgs = append([]string(nil), in.ActionPath[i:]...)
		break
	}

	if len(in.Arguments) > 0 && !node.acceptsArguments {
		return node, nil, &IllegalArgumentError{Token: in.Arguments[0], Action: node.CommandPath()}
	}
	return node, pathArgs, nil
}
