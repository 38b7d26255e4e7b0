package generate

import "strings"

// buildInstruction is a pure function of the prompt: identical prompts
// produce byte-identical instructions, so provider calls stay reproducible.
func buildInstruction(prompt string) string {
	var sb strings.Builder
	sb.WriteString("Generate React code for the following request: ")
	sb.WriteString(prompt)
	sb.WriteString(".\n")
	sb.WriteString("Return only the code without explanations. ")
	sb.WriteString("Format the response as plain text containing a single JSON object with the following structure:\n")
	sb.WriteString(`{"files": [{"path": "src/components/Example.tsx", "content": "// Code content here"}]}`)
	sb.WriteString("\nDo not wrap the JSON in markdown fences or prose.")
	return sb.String()
}
