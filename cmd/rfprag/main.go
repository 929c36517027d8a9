// Command rfprag is an interactive console for analyzing RFP documents:
// uploading them to a blob store, running key-phrase and summary analysis,
// composing retrieval-augmented prompts, and chatting over the results.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
	"github.com/MegaGrindStone/go-rfp-rag/analytics"
	"github.com/MegaGrindStone/go-rfp-rag/document"
	"github.com/MegaGrindStone/go-rfp-rag/index"
	"github.com/MegaGrindStone/go-rfp-rag/llm"
	"github.com/MegaGrindStone/go-rfp-rag/storage"
	"github.com/MegaGrindStone/go-rfp-rag/websearch"
	"github.com/joho/godotenv"
	"github.com/philippgille/chromem-go"
)

type session struct {
	cfg      config
	store    rfprag.BlobStore
	analyzer rfprag.TextAnalyzer
	searcher rfprag.WebSearcher
	indexer  rfprag.IndexSearcher
	gpt      rfprag.Completer
	presets  map[string]string

	conversation *rfprag.Conversation

	logger *slog.Logger
}

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	store, err := newStore(cfg, logger)
	if err != nil {
		fmt.Printf("Error creating document store: %v\n", err)
		os.Exit(1)
	}

	presets := map[string]string{"default": rfprag.DefaultAnalysisInstruction}
	if cfg.PresetFile != "" {
		loaded, err := loadPresets(cfg.PresetFile)
		if err != nil {
			fmt.Printf("Error loading presets: %v\n", err)
			os.Exit(1)
		}
		for name, instruction := range loaded {
			presets[name] = instruction
		}
	}

	indexer, err := newIndexSearcher(cfg, logger)
	if err != nil {
		fmt.Printf("Error creating index searcher: %v\n", err)
		os.Exit(1)
	}

	s := &session{
		cfg:      cfg,
		store:    store,
		analyzer: analytics.NewAzure(cfg.LanguageEndpoint, cfg.LanguageAPIKey, "", logger),
		searcher: websearch.NewLangSearch("", cfg.LangSearchKey, logger),
		indexer:  indexer,
		gpt:      newCompleter(cfg, logger),
		presets:  presets,
		logger:   logger,
	}

	s.run()
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func newStore(cfg config, logger *slog.Logger) (rfprag.BlobStore, error) {
	if cfg.LocalStorePath != "" {
		return storage.NewBolt(cfg.LocalStorePath)
	}
	store, err := storage.NewAzureBlob(cfg.AzureConnectionString, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newCompleter selects the chat backend: a local Ollama server when
// OLLAMA_HOST is set, the Azure OpenAI deployment otherwise.
func newCompleter(cfg config, logger *slog.Logger) rfprag.Completer {
	if cfg.OllamaHost != "" {
		return llm.NewOllama(cfg.OllamaHost, cfg.OllamaModel, llm.Parameters{}, logger)
	}
	return llm.NewAzureOpenAI(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.ChatDeployment, llm.Parameters{}, logger)
}

// newIndexSearcher selects the corpus index: a local chromem index with
// Ollama embeddings when LOCAL_INDEX_PATH is set, the Azure Cognitive Search
// service otherwise.
func newIndexSearcher(cfg config, logger *slog.Logger) (rfprag.IndexSearcher, error) {
	if cfg.LocalIndexPath != "" {
		return index.NewChromem(cfg.LocalIndexPath, chromem.NewEmbeddingFuncOllama(cfg.OllamaEmbedModel, ""))
	}
	return index.NewAzureSearch(cfg.SearchServiceName, "", cfg.SearchAPIKey, logger), nil
}

func (s *session) run() {
	fmt.Println("rfprag console. Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		command, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch command {
		case "help":
			printHelp()
		case "list":
			s.list()
		case "upload":
			s.upload(arg)
		case "import":
			s.importDir(arg)
		case "delete":
			s.delete(arg)
		case "load":
			s.load(arg)
		case "analyze":
			s.analyze(arg)
		case "rag":
			s.rag(arg)
		case "requirements":
			s.requirements()
		case "search":
			s.search(arg)
		case "ask":
			s.ask(arg)
		case "history":
			s.history()
		case "quit", "exit":
			return
		default:
			fmt.Printf("Unknown command %q. Type 'help' for commands.\n", command)
		}
	}
}

func printHelp() {
	fmt.Println(`Commands:
  list                     list documents in the store
  upload <path>            upload a document
  import <dir>             upload all supported documents under a directory
  delete <name>            delete a document
  load <name> [query]      extract a document and start a chat session;
                           the optional query collects external web context
  analyze [preset]         run key-phrase/summary analysis plus GPT analysis
  rag <instruction>        GPT analysis augmented with the loaded external context
  requirements             extract the structured requirement table
  search <keyword>         search the indexed proposal corpus
  ask <question>           ask a follow-up question about the loaded document
  history                  show the conversation history
  quit                     exit`)
}

func (s *session) list() {
	names, err := s.store.List(s.cfg.Container)
	if err != nil {
		fmt.Printf("Error listing documents: %v\n", err)
		return
	}
	if len(names) == 0 {
		fmt.Println("No documents in the store.")
		return
	}
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
}

func (s *session) upload(path string) {
	if path == "" {
		fmt.Println("Usage: upload <path>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}
	name := filepath.Base(path)
	if err := s.store.Put(s.cfg.Container, name, data, true); err != nil {
		fmt.Printf("Error uploading document: %v\n", err)
		return
	}
	fmt.Printf("Uploaded %s (%d bytes).\n", name, len(data))
}

func (s *session) importDir(dir string) {
	if dir == "" {
		fmt.Println("Usage: import <dir>")
		return
	}
	uploaded, skipped, err := storage.ImportDir(s.store, s.cfg.Container, dir, false, s.logger)
	if err != nil {
		fmt.Printf("Error importing directory: %v\n", err)
		return
	}
	fmt.Printf("Uploaded %d documents, skipped %d existing.\n", len(uploaded), len(skipped))
}

func (s *session) delete(name string) {
	if name == "" {
		fmt.Println("Usage: delete <name>")
		return
	}
	if err := s.store.Delete(s.cfg.Container, name); err != nil {
		fmt.Printf("Error deleting document: %v\n", err)
		return
	}
	fmt.Printf("Deleted %s.\n", name)
}

func (s *session) load(arg string) {
	name, query, _ := strings.Cut(arg, " ")
	if name == "" {
		fmt.Println("Usage: load <name> [query]")
		return
	}

	doc, err := document.Extract(s.store, s.cfg.Container, name, s.logger)
	if err != nil {
		fmt.Printf("Error extracting document: %v\n", err)
		return
	}
	fmt.Printf("Extracted %s: %d paragraphs, %d chars.\n", doc.Name, len(doc.Paragraphs), len([]rune(doc.Text())))

	context := rfprag.ExternalContext{}
	if query = strings.TrimSpace(query); query != "" {
		var warnings []rfprag.Warning
		context, warnings = rfprag.BuildExternalContext(s.searcher, query, s.logger)
		printWarnings(warnings)
		fmt.Printf("Collected %d chars of external context.\n", len(context.Content))
	}

	if s.conversation == nil {
		s.conversation = rfprag.NewConversation(doc, context)
	} else {
		s.conversation.Reset(doc, context)
	}
	fmt.Printf("Session %s ready.\n", s.conversation.ID())
}

func (s *session) analyze(preset string) {
	if s.conversation == nil {
		fmt.Println("Load a document first.")
		return
	}
	if preset == "" {
		preset = "default"
	}
	instruction, ok := s.presets[preset]
	if !ok {
		fmt.Printf("Unknown preset %q.\n", preset)
		return
	}

	doc := s.conversation.Document()

	results := rfprag.AnalyzeDocument(doc, s.analyzer, rfprag.AnalyzeOptions{MaxChars: s.cfg.MaxChunkChars}, s.logger)
	for _, result := range results {
		fmt.Printf("\n--- Chunk %d (%d chars) ---\n", result.Chunk.Index+1, result.Chunk.CharLength)
		if result.Err != nil {
			fmt.Printf("Chunk %d failed: %v\n", result.Chunk.Index+1, result.Err)
			continue
		}
		fmt.Println("Key phrases:")
		for _, phrase := range result.KeyPhrases {
			fmt.Printf("  - %s\n", phrase)
		}
		fmt.Println("Summary:")
		for _, sentence := range result.Summary {
			fmt.Printf("  - %s\n", sentence)
		}
	}

	prompt, stats, err := rfprag.ComposeAnalysisPrompt(doc, instruction)
	if err != nil {
		fmt.Printf("Error composing prompt: %v\n", err)
		return
	}
	fmt.Printf("\nPrompt: %d chars, %d tokens. Calling GPT...\n", stats.Chars, stats.Tokens)

	s.invoke(rfprag.ProposalExpertPersona, prompt)
}

func (s *session) rag(instruction string) {
	if s.conversation == nil {
		fmt.Println("Load a document first.")
		return
	}

	prompt, stats, err := rfprag.ComposeRAGPrompt(s.conversation.Document(), s.conversation.Context(), instruction)
	if err != nil {
		fmt.Printf("Error composing prompt: %v\n", err)
		return
	}
	fmt.Printf("Prompt: %d chars, %d tokens. Calling GPT...\n", stats.Chars, stats.Tokens)

	s.invoke(rfprag.ProposalExpertPersona, prompt)
}

func (s *session) requirements() {
	if s.conversation == nil {
		fmt.Println("Load a document first.")
		return
	}

	prompt, _, err := rfprag.ComposeRAGPrompt(s.conversation.Document(), s.conversation.Context(), rfprag.RequirementInstruction)
	if err != nil {
		fmt.Printf("Error composing prompt: %v\n", err)
		return
	}

	resp, warnings, err := rfprag.Invoke(s.gpt, rfprag.DefaultRetryPolicy(), rfprag.ProposalExpertPersona, prompt, s.logger)
	if err != nil {
		fmt.Printf("Error calling GPT: %v\n", err)
		return
	}
	printWarnings(warnings)

	table, err := rfprag.ParseRequirementTable(resp.Content)
	if err != nil {
		fmt.Printf("Error parsing requirement table: %v\n", err)
		return
	}

	fmt.Println("Business requirements:")
	for _, req := range table.Business {
		fmt.Printf("  [%s] %s: %s\n", req.Category, req.Item, req.Detail)
	}
	fmt.Println("Technical requirements:")
	for _, req := range table.Technical {
		fmt.Printf("  [%s] %s: %s\n", req.Category, req.Item, req.Detail)
	}
}

func (s *session) search(keyword string) {
	if keyword == "" {
		fmt.Println("Usage: search <keyword>")
		return
	}

	docs, err := s.indexer.Search(keyword, []string{"content"}, 5)
	if err != nil {
		if errors.Is(err, rfprag.ErrNoSearchableFields) {
			fmt.Println("None of the selected fields are searchable.")
			return
		}
		fmt.Printf("Error searching index: %v\n", err)
		return
	}
	if len(docs) == 0 {
		fmt.Println("No results.")
		return
	}
	for _, doc := range docs {
		fmt.Printf("\n# %s\n%s\n(created %s by %s)\n", doc.Title, doc.Content, doc.Created, doc.Author)
	}
}

func (s *session) ask(question string) {
	if s.conversation == nil {
		fmt.Println("Load a document first.")
		return
	}

	resp, warnings, err := s.conversation.Ask(question, s.gpt, s.retryPolicy(), s.logger)
	if err != nil {
		if errors.Is(err, rfprag.ErrEmptyQuestion) {
			fmt.Println("Please enter a question.")
			return
		}
		fmt.Printf("Error asking question: %v\n", err)
		return
	}
	printWarnings(warnings)
	fmt.Println(resp.Content)
}

func (s *session) history() {
	if s.conversation == nil {
		fmt.Println("No active session.")
		return
	}
	turns := s.conversation.TurnsForDisplay()
	if len(turns) == 0 {
		fmt.Println("No questions asked yet.")
		return
	}
	for i, turn := range turns {
		fmt.Printf("Q%d: %s\nA: %s\n---\n", len(turns)-i, turn.Question, turn.Answer)
	}
}

func (s *session) invoke(system, prompt string) {
	resp, warnings, err := rfprag.Invoke(s.gpt, s.retryPolicy(), system, prompt, s.logger)
	if err != nil {
		fmt.Printf("Error calling GPT: %v\n", err)
		return
	}
	printWarnings(warnings)

	fmt.Printf("\n%s\n", strings.TrimSpace(resp.Content))
	fmt.Printf("\nTokens: prompt=%d completion=%d total=%d\n",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
}

func (s *session) retryPolicy() rfprag.RetryPolicy {
	policy := rfprag.DefaultRetryPolicy()
	policy.OnRetry = func(attempt int) {
		fmt.Printf("GPT is rate limited, retrying (attempt %d)...\n", attempt)
	}
	return policy
}

func printWarnings(warnings []rfprag.Warning) {
	for _, warning := range warnings {
		fmt.Printf("[%s] %s\n", strings.ToUpper(string(warning.Severity)), warning.Message)
	}
}
