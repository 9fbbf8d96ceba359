package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"

	"github.com/policylens/backend/internal/storage/models"
	"github.com/policylens/backend/pkg/logger"
)

// Processor turns a policy document behind a blob URL into retrieval
// chunks with section metadata.
type Processor struct {
	chunkSize    int
	chunkOverlap int
	maxBytes     int64
	client       *http.Client
}

func NewProcessor(chunkSize, chunkOverlap int, downloadTimeout time.Duration, maxBytes int64) *Processor {
	if chunkSize <= 0 {
		chunkSize = 300
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	return &Processor{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		maxBytes:     maxBytes,
		client:       &http.Client{Timeout: downloadTimeout},
	}
}

var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][A-Z\s]{5,}$`),
	regexp.MustCompile(`^\d+(?:\.\d+)*\s+[A-Z]`),
	regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*:$`),
}

// ProcessDocument downloads the document, extracts its text, and splits
// it into overlapping chunks grouped under detected headings.
func (p *Processor) ProcessDocument(ctx context.Context, docURL string) ([]models.Chunk, error) {
	logger.Info("Processing document", zap.String("url", docURL))

	text, err := p.fetchText(ctx, docURL)
	if err != nil {
		return nil, err
	}

	chunks := p.ChunkText(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text extracted from %s", docURL)
	}

	logger.Info("Document chunked",
		zap.String("url", docURL),
		zap.Int("chunks", len(chunks)),
	)

	return chunks, nil
}

func (p *Processor) fetchText(ctx context.Context, docURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid document url: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download document: status %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if p.maxBytes > 0 {
		body = io.LimitReader(resp.Body, p.maxBytes)
	}

	switch detectFormat(docURL, resp.Header.Get("Content-Type")) {
	case "pdf":
		return extractViaTempFile(body, ".pdf", extractPDF)
	case "docx":
		return extractViaTempFile(body, ".docx", extractDOCX)
	case "html":
		return extractHTML(body)
	default:
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("failed to read document body: %w", err)
		}
		return string(data), nil
	}
}

func detectFormat(docURL, contentType string) string {
	ext := ""
	if u, err := url.Parse(docURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}

	switch ext {
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	}

	switch {
	case strings.Contains(contentType, "application/pdf"):
		return "pdf"
	case strings.Contains(contentType, "wordprocessingml"):
		return "docx"
	case strings.Contains(contentType, "text/html"):
		return "html"
	}
	return "text"
}

// extractViaTempFile spools the body to disk because the PDF and DOCX
// readers need random access.
func extractViaTempFile(body io.Reader, suffix string, extract func(string) (string, error)) (string, error) {
	tmp, err := os.CreateTemp("", "policylens-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to spool document: %w", err)
	}
	tmp.Close()

	return extract(tmp.Name())
}

func extractPDF(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat pdf: %w", err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract pdf page %d: %w", i, err)
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

func extractDOCX(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read docx: %w", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	return xmlTagRe.ReplaceAllString(content, "\n"), nil
}

func extractHTML(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}

// ChunkText splits cleaned text into overlapping word windows, grouped
// under the most recent heading, each annotated with retrieval metadata.
func (p *Processor) ChunkText(text string) []models.Chunk {
	var chunks []models.Chunk
	for _, section := range splitSections(text) {
		chunks = append(chunks, p.chunkSection(section, len(chunks))...)
	}
	return chunks
}

type section struct {
	heading   string
	text      string
	isHeading bool
}

func splitSections(text string) []section {
	var sections []section
	current := section{}

	flush := func() {
		if strings.TrimSpace(current.text) != "" {
			sections = append(sections, current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = cleanLine(line)
		if line == "" {
			continue
		}

		if isHeadingLine(line) {
			flush()
			current = section{heading: line, text: line, isHeading: true}
			continue
		}

		if current.text == "" {
			current.text = line
		} else {
			current.text += " " + line
		}
	}
	flush()

	return sections
}

func isHeadingLine(line string) bool {
	if len(strings.Fields(line)) > 12 {
		return false
	}
	for _, pattern := range headingPatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

func cleanLine(line string) string {
	replacer := strings.NewReplacer(
		"\u00a0", " ",
		"’", "'",
		"‘", "'",
		"“", `"`,
		"”", `"`,
	)
	return strings.Join(strings.Fields(replacer.Replace(line)), " ")
}

func (p *Processor) chunkSection(s section, startIndex int) []models.Chunk {
	words := strings.Fields(s.text)
	if len(words) == 0 {
		return nil
	}

	var chunks []models.Chunk
	step := p.chunkSize - p.chunkOverlap

	for start := 0; start < len(words); start += step {
		end := start + p.chunkSize
		if end > len(words) {
			end = len(words)
		}

		chunkText := strings.Join(words[start:end], " ")
		chunks = append(chunks, p.newChunk(chunkText, s, startIndex+len(chunks)))

		if end == len(words) {
			break
		}
	}

	return chunks
}

var digitRe = regexp.MustCompile(`\d`)

func (p *Processor) newChunk(text string, s section, index int) models.Chunk {
	lower := strings.ToLower(text)

	heading := s.heading
	if len(heading) > 100 {
		heading = heading[:100]
	}

	return models.Chunk{
		ID:   uuid.New().String(),
		Text: text,
		Metadata: models.ChunkMetadata{
			SectionType:    DetectSectionType(text),
			Section:        heading,
			ChunkIndex:     index,
			WordCount:      len(strings.Fields(text)),
			HasNumbers:     digitRe.MatchString(text),
			HasDefinitions: strings.Contains(lower, "means") || strings.Contains(lower, "defined as"),
			IsHeading:      s.isHeading,
		},
	}
}

// DetectSectionType classifies a chunk by its dominant vocabulary.
// Checks run in priority order; the first hit wins.
func DetectSectionType(text string) models.SectionType {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "definition", " means ", "defined as", "shall mean"):
		return models.SectionDefinition
	case containsAny(lower, "exclusion", "excluded", "not covered", "does not cover", "shall not be payable"):
		return models.SectionExclusion
	case containsAny(lower, "coverage", "benefit", "covered", "sum insured", "limit", "maximum", "deductible"):
		return models.SectionCoverage
	case containsAny(lower, "claim", "procedure", "intimation", "submit"):
		return models.SectionClaims
	default:
		return models.SectionOther
	}
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
