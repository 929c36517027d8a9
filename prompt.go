package rfprag

import (
	"fmt"

	"github.com/MegaGrindStone/go-rfp-rag/internal"
)

// ProposalExpertPersona is the system message describing the proposal-writing
// role used for document analysis and RAG prompts.
const ProposalExpertPersona = `You are an expert who writes proposals based on financial-sector RFP documents.
- You are well versed in financial IT systems, current technology trends, and the regulatory environment.
- You analyze RFP requirements precisely and present feasible solutions with clear supporting evidence.
- You structure proposals logically (requirements, solution, schedule, budget, risk) and use data and tables to build credibility.
- You explain complex terminology plainly and exclude false, exaggerated, or unrealistic content.
- You comply with legal, ethical, and financial regulatory standards.
- Where possible, reference real financial-sector RFP cases to make the proposal persuasive.`

// ChatPersona is the system message for follow-up chat over a loaded
// document and its external context.
const ChatPersona = `You are a financial RFP analysis expert who answers questions using both the document and the external background information.`

// DefaultAnalysisInstruction is the instruction block applied when the user
// does not supply one.
const DefaultAnalysisInstruction = `Requested tasks:
1. Summarize the entire content in one concise paragraph.
2. Identify and organize the key topics or domains mentioned in the document.
3. Explain the purpose and background of the proposal request clearly and briefly.
4. Analyze the business requirements comprehensively and present them as a categorized reference table with your own categories.
5. Present the technical requirements as a reference table categorized into functional, non-functional, operational, and security items.
6. Suggest the expected table of contents following the flow of this document (e.g. overview, requirements, proposal structure).
7. Recommend IT technologies or related solutions relevant to the requirements of this document.

Notes:
- Format the output visually using Markdown or tables.`

const analysisPrompt = `The following is the original text of an RFP document. Scan the document as a whole, then analyze and write up the items below step by step:
"""{{.DocumentText}}"""
"""{{.Instruction}}"""
Document content:`

const ragPrompt = `You are an expert analyzing a financial RFP.
Below is the actual document content:
"""{{.DocumentText}}"""
Below is background information collected from external search:
"""{{.ExternalContext}}"""
User request:
{{.Instruction}}
Analyze and respond step by step, taking the whole document and the external background into account.`

const chatPrompt = `Document: {{.DocumentText}}
External information: {{.ExternalContext}}
Question: {{.Question}}`

// PromptStats reports the size of a composed prompt so the caller can warn
// the user before invocation. No truncation is ever performed.
type PromptStats struct {
	Chars  int
	Tokens int
}

type promptData struct {
	DocumentText    string
	ExternalContext string
	Instruction     string
	Question        string
}

// ComposeAnalysisPrompt builds the multi-stage analysis prompt from the
// document text and the user's instruction block. Identical inputs always
// produce an identical prompt.
func ComposeAnalysisPrompt(doc Document, instruction string) (string, PromptStats, error) {
	if instruction == "" {
		instruction = DefaultAnalysisInstruction
	}
	return composePrompt("analysis", analysisPrompt, promptData{
		DocumentText: doc.Text(),
		Instruction:  instruction,
	})
}

// ComposeRAGPrompt builds the retrieval-augmented analysis prompt bundling
// document text, external background context, and the user's request.
func ComposeRAGPrompt(doc Document, context ExternalContext, instruction string) (string, PromptStats, error) {
	if instruction == "" {
		instruction = DefaultAnalysisInstruction
	}
	return composePrompt("rag", ragPrompt, promptData{
		DocumentText:    doc.Text(),
		ExternalContext: context.Content,
		Instruction:     instruction,
	})
}

// ComposeChatPrompt builds the follow-up chat prompt for a question over a
// loaded document and its external context.
func ComposeChatPrompt(doc Document, context ExternalContext, question string) (string, PromptStats, error) {
	return composePrompt("chat", chatPrompt, promptData{
		DocumentText:    doc.Text(),
		ExternalContext: context.Content,
		Question:        question,
	})
}

func composePrompt(name, templ string, data promptData) (string, PromptStats, error) {
	prompt, err := promptTemplate(name, templ, data)
	if err != nil {
		return "", PromptStats{}, fmt.Errorf("failed to compose %s prompt: %w", name, err)
	}

	tokens, err := internal.CountTokens(prompt)
	if err != nil {
		return "", PromptStats{}, fmt.Errorf("failed to count prompt tokens: %w", err)
	}

	return prompt, PromptStats{
		Chars:  len([]rune(prompt)),
		Tokens: tokens,
	}, nil
}
