package services

import "strings"

// PromptTemplate is the built-in answer prompt. It is also the default
// written to the prompt store on first use.
const PromptTemplate = `Anda adalah asisten yang membantu masyarakat memilah sampah.
Jawablah pertanyaan hanya berdasarkan konteks berikut.
Jika konteks tidak memuat jawabannya, katakan bahwa Anda tidak memiliki informasi cukup.

Konteks:
{context}

Pertanyaan: {question}

Jawaban:`

// RenderPrompt fills the {context} and {question} placeholders of tmpl.
func RenderPrompt(tmpl, context, question string) string {
	r := strings.NewReplacer("{context}", context, "{question}", question)
	return r.Replace(tmpl)
}

// joinContext concatenates retrieved document contents separated by blank lines.
func joinContext(contents []string) string {
	return strings.Join(contents, "\n\n")
}
