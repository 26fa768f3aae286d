package agent

import (
	"fmt"
	"sort"
	"strings"
)

const (
	FieldFunctionName = "function_name"
	FieldArguments    = "arguments"
	FieldTranslation  = "translation"

	DefaultTargetLanguage = "English"
)

// BuildActionPrompt renders the instruction prompt for choosing one action from catalog.
func BuildActionPrompt(catalog Catalog, utterance string) string {
	builder := &strings.Builder{}
	builder.WriteString("You are an assistant that maps a user's request to exactly one application action.\n")
	builder.WriteString("Respond with exactly one JSON object and nothing else: no explanations, no prose before or after it.\n")
	fmt.Fprintf(builder, "The object must contain the key \"%s\" whose value is the chosen action name.\n", FieldFunctionName)
	if hasParameters(catalog) {
		fmt.Fprintf(builder, "If the chosen action takes parameters, add an \"%s\" object with their values.\n", FieldArguments)
	}
	fmt.Fprintf(builder, "If no action fits the request, or the request is ambiguous, use \"%s\" as the action name.\n", UnknownAction)

	builder.WriteString("\nAvailable actions:\n")
	for _, action := range catalog {
		if action.Description != "" {
			fmt.Fprintf(builder, "- %s: %s\n", action.Name, action.Description)
		} else {
			fmt.Fprintf(builder, "- %s\n", action.Name)
		}
		keys := make([]string, 0, len(action.Parameters))
		for key := range action.Parameters {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(builder, "    parameter %s: %s\n", key, action.Parameters[key])
		}
	}

	builder.WriteString("\nExample:\n")
	builder.WriteString("User request: \"what's the weather like today?\"\n")
	fmt.Fprintf(builder, "Output: {\"%s\": \"%s\"}\n", FieldFunctionName, UnknownAction)

	builder.WriteString("\nUser request:\n")
	builder.WriteString(utterance)
	builder.WriteString("\n\nOutput:\n")
	return builder.String()
}

// BuildTranslationPrompt renders the instruction prompt for translating text into target.
func BuildTranslationPrompt(text, target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		target = DefaultTargetLanguage
	}
	builder := &strings.Builder{}
	fmt.Fprintf(builder, "Translate the user's text into %s.\n", target)
	fmt.Fprintf(builder, "Respond with exactly one JSON object with the single key \"%s\" and nothing else.\n", FieldTranslation)
	fmt.Fprintf(builder, "If the text is already in %s, return it unchanged.\n", target)
	if strings.EqualFold(target, DefaultTargetLanguage) {
		builder.WriteString("\nExample:\n")
		builder.WriteString("Text: \"próxima imagem\"\n")
		fmt.Fprintf(builder, "Output: {\"%s\": \"next image\"}\n", FieldTranslation)
	}
	builder.WriteString("\nText:\n")
	builder.WriteString(text)
	builder.WriteString("\n\nOutput:\n")
	return builder.String()
}

func hasParameters(catalog Catalog) bool {
	for _, action := range catalog {
		if len(action.Parameters) > 0 {
			return true
		}
	}
	return false
}
