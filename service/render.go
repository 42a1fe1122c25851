package service

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/Khalil2008k/guild-contracts/model"
)

// DocumentRenderer projects a contract into its two-page bilingual document:
// once as a structured view model for in-app display, once as a standalone
// HTML string for PDF export. It performs no I/O; output depends only on the
// contract and the requested language.
type DocumentRenderer struct {
	tmpl *template.Template
}

func NewDocumentRenderer() *DocumentRenderer {
	return &DocumentRenderer{
		tmpl: template.Must(template.New("contract").Parse(contractHTML)),
	}
}

// Labels are the static captions of the document in one language.
type Labels struct {
	DocumentTitle string
	ContractID    string
	Version       string
	Parties       string
	Poster        string
	Doer          string
	GID           string
	Email         string
	Phone         string
	Financial     string
	Budget        string
	PaymentTerms  string
	Timeline      string
	StartDate     string
	EndDate       string
	Duration      string
	Deliverables  string
	PlatformRules string
	PosterRules   string
	RulesVersion  string
	Signatures    string
	SignedAt      string
	Token         string
	NotSigned     string
	TermsAccepted string
	PageOne       string
	PageTwo       string
}

var labelsEn = Labels{
	DocumentTitle: "Work Contract",
	ContractID:    "Contract ID",
	Version:       "Template Version",
	Parties:       "Parties",
	Poster:        "Job Poster",
	Doer:          "Job Doer",
	GID:           "GID",
	Email:         "Email",
	Phone:         "Phone",
	Financial:     "Financial Terms",
	Budget:        "Budget",
	PaymentTerms:  "Payment Terms",
	Timeline:      "Timeline",
	StartDate:     "Start Date",
	EndDate:       "End Date",
	Duration:      "Estimated Duration",
	Deliverables:  "Deliverables",
	PlatformRules: "Platform Rules",
	PosterRules:   "Additional Terms by Poster",
	RulesVersion:  "Rules Version",
	Signatures:    "Signatures",
	SignedAt:      "Signed At",
	Token:         "Signature Token",
	NotSigned:     "Not signed yet",
	TermsAccepted: "Terms accepted",
	PageOne:       "Page 1 of 2",
	PageTwo:       "Page 2 of 2",
}

var labelsAr = Labels{
	DocumentTitle: "عقد عمل",
	ContractID:    "رقم العقد",
	Version:       "إصدار النموذج",
	Parties:       "الأطراف",
	Poster:        "صاحب العمل",
	Doer:          "منفذ العمل",
	GID:           "الرمز التعريفي",
	Email:         "البريد الإلكتروني",
	Phone:         "الهاتف",
	Financial:     "الشروط المالية",
	Budget:        "الميزانية",
	PaymentTerms:  "شروط الدفع",
	Timeline:      "الجدول الزمني",
	StartDate:     "تاريخ البدء",
	EndDate:       "تاريخ الانتهاء",
	Duration:      "المدة المقدرة",
	Deliverables:  "التسليمات",
	PlatformRules: "قواعد المنصة",
	PosterRules:   "شروط إضافية من صاحب العمل",
	RulesVersion:  "إصدار القواعد",
	Signatures:    "التوقيعات",
	SignedAt:      "تاريخ التوقيع",
	Token:         "رمز التوقيع",
	NotSigned:     "لم يوقع بعد",
	TermsAccepted: "تمت الموافقة على الشروط",
	PageOne:       "صفحة 1 من 2",
	PageTwo:       "صفحة 2 من 2",
}

var arabicMonths = [12]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// PartyBlock is one party's identity section on page one.
type PartyBlock struct {
	Name  string
	GID   string
	Email string
	Phone string
}

// SignatureBlock is one party's signature section on page two.
type SignatureBlock struct {
	Name          string
	Signed        bool
	SignedAt      string
	TokenPreview  string
	AcceptedTerms bool
}

type PageOne struct {
	JobTitle       string
	JobDescription string
	Poster         PartyBlock
	Doer           PartyBlock
	Budget         string
	PaymentTerms   string
	StartDate      string
	EndDate        string
	Duration       string
	Deliverables   []string
}

type PageTwo struct {
	RulesVersion  string
	PlatformRules []string
	PosterRules   []string
	Poster        SignatureBlock
	Doer          SignatureBlock
}

// PageModel is the rendered document. The page frame itself stays LTR; RTL
// flips only the text direction and alignment of the content blocks.
type PageModel struct {
	ContractID string
	Version    string
	Language   string
	RTL        bool
	Labels     Labels
	Page1      PageOne
	Page2      PageTwo
}

// RenderView builds the view model for one language. Fields missing the
// requested language variant fall back to the other language; the only error
// is an unsupported language code.
func (r *DocumentRenderer) RenderView(c *model.Contract, lang string) (*PageModel, error) {
	labels := labelsEn
	switch lang {
	case model.LangEnglish:
	case model.LangArabic:
		labels = labelsAr
	default:
		return nil, fmt.Errorf("%w: unsupported language %q", model.ErrRender, lang)
	}

	deliverables := make([]string, 0, len(c.Deliverables))
	for _, d := range c.Deliverables {
		deliverables = append(deliverables, pickLang(d, lang))
	}
	platformRules := make([]string, 0, len(c.PlatformRules))
	for _, rule := range c.PlatformRules {
		platformRules = append(platformRules, pickLang(rule, lang))
	}
	posterRules := make([]string, 0, len(c.PosterRules))
	for _, rule := range c.PosterRules {
		posterRules = append(posterRules, pickLang(rule, lang))
	}

	return &PageModel{
		ContractID: c.ID,
		Version:    c.Version,
		Language:   lang,
		RTL:        lang == model.LangArabic,
		Labels:     labels,
		Page1: PageOne{
			JobTitle:       c.JobTitle,
			JobDescription: c.JobDescription,
			Poster:         partyBlock(&c.Poster),
			Doer:           partyBlock(&c.Doer),
			Budget:         formatMoney(c.BudgetMinor, c.Currency),
			PaymentTerms:   pickLang(c.PaymentTerms, lang),
			StartDate:      formatDate(c.StartDate, lang),
			EndDate:        formatDate(c.EndDate, lang),
			Duration:       c.EstimatedDuration,
			Deliverables:   deliverables,
		},
		Page2: PageTwo{
			RulesVersion:  c.RulesVersion,
			PlatformRules: platformRules,
			PosterRules:   posterRules,
			Poster:        signatureBlock(&c.Poster, lang),
			Doer:          signatureBlock(&c.Doer, lang),
		},
	}, nil
}

// RenderHTML serializes the view model into a self-contained HTML document
// with inline styles, suitable for PDF conversion. All contract text passes
// through html/template's contextual escaping.
func (r *DocumentRenderer) RenderHTML(c *model.Contract, lang string) (string, error) {
	page, err := r.RenderView(c, lang)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := r.tmpl.Execute(&b, page); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrRender, err)
	}
	return b.String(), nil
}

// pickLang selects the requested language variant, falling back to the other
// language when the requested one is empty.
func pickLang(b model.BilingualText, lang string) string {
	if lang == model.LangArabic {
		if b.Ar != "" {
			return b.Ar
		}
		return b.En
	}
	if b.En != "" {
		return b.En
	}
	return b.Ar
}

func partyBlock(p *model.Party) PartyBlock {
	return PartyBlock{
		Name:  p.Name,
		GID:   p.GID,
		Email: p.Email,
		Phone: p.Phone,
	}
}

func signatureBlock(p *model.Party, lang string) SignatureBlock {
	block := SignatureBlock{
		Name:          p.Name,
		AcceptedTerms: p.AcceptedTerms,
	}
	if p.Signature != nil {
		block.Signed = true
		block.SignedAt = formatDateTime(p.Signature.SignedAt, lang)
		block.TokenPreview = tokenPreview(p.Signature.Token)
	}
	return block
}

func tokenPreview(token string) string {
	if len(token) <= 16 {
		return token
	}
	return token[:16] + "…"
}

func formatDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	if lang == model.LangArabic {
		return fmt.Sprintf("%d %s %d", t.Day(), arabicMonths[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}

func formatDateTime(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	clock := t.UTC().Format("15:04 MST")
	return formatDate(t.UTC(), lang) + " " + clock
}

// formatMoney renders a minor-unit amount with the currency code.
func formatMoney(minor int64, currency string) string {
	whole := minor / 100
	frac := minor % 100
	return fmt.Sprintf("%s.%02d %s", groupThousands(whole), frac, currency)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// contractHTML is the exported document. The page frame stays LTR; the "rtl"
// class flips text direction only on content blocks.
const contractHTML = `<!DOCTYPE html>
<html dir="ltr" lang="{{.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Labels.DocumentTitle}} · {{.ContractID}}</title>
<style>
body { font-family: 'Helvetica Neue', Arial, 'Segoe UI', sans-serif; color: #1a1a2e; margin: 0; }
.page { padding: 40px 48px; page-break-after: always; }
.page:last-child { page-break-after: auto; }
.rtl { direction: rtl; text-align: right; }
.ltr { direction: ltr; text-align: left; }
h1 { font-size: 22px; margin: 0 0 4px; }
h2 { font-size: 15px; border-bottom: 1px solid #d0d0da; padding-bottom: 4px; margin: 24px 0 10px; }
.meta { color: #6b6b80; font-size: 11px; margin-bottom: 20px; }
.columns { display: flex; gap: 24px; }
.col { flex: 1; }
.card { border: 1px solid #d0d0da; border-radius: 6px; padding: 12px 16px; font-size: 12px; }
.card .who { font-weight: bold; font-size: 13px; margin-bottom: 6px; }
dl { margin: 0; font-size: 12px; }
dt { color: #6b6b80; float: left; width: 140px; clear: left; }
.rtl dt { float: right; }
dd { margin: 0 0 6px 0; }
ol { font-size: 12px; padding-inline-start: 20px; }
li { margin-bottom: 6px; }
.sig { border: 1px solid #d0d0da; border-radius: 6px; padding: 12px 16px; font-size: 12px; min-height: 90px; }
.sig .who { font-weight: bold; margin-bottom: 6px; }
.token { font-family: monospace; font-size: 11px; color: #3a3a55; direction: ltr; unicode-bidi: embed; }
.pending { color: #a06a00; }
.footer { color: #9a9aac; font-size: 10px; margin-top: 32px; text-align: center; }
</style>
</head>
<body>
<div class="page {{if .RTL}}rtl{{else}}ltr{{end}}">
  <h1>{{.Labels.DocumentTitle}}</h1>
  <div class="meta">{{.Labels.ContractID}}: {{.ContractID}} · {{.Labels.Version}}: {{.Version}}</div>

  <h2>{{.Page1.JobTitle}}</h2>
  {{if .Page1.JobDescription}}<p style="font-size:12px">{{.Page1.JobDescription}}</p>{{end}}

  <h2>{{.Labels.Parties}}</h2>
  <div class="columns">
    <div class="col card">
      <div class="who">{{.Labels.Poster}}</div>
      <div>{{.Page1.Poster.Name}}</div>
      <div>{{.Labels.GID}}: {{.Page1.Poster.GID}}</div>
      {{if .Page1.Poster.Email}}<div>{{.Labels.Email}}: {{.Page1.Poster.Email}}</div>{{end}}
      {{if .Page1.Poster.Phone}}<div>{{.Labels.Phone}}: {{.Page1.Poster.Phone}}</div>{{end}}
    </div>
    <div class="col card">
      <div class="who">{{.Labels.Doer}}</div>
      <div>{{.Page1.Doer.Name}}</div>
      <div>{{.Labels.GID}}: {{.Page1.Doer.GID}}</div>
      {{if .Page1.Doer.Email}}<div>{{.Labels.Email}}: {{.Page1.Doer.Email}}</div>{{end}}
      {{if .Page1.Doer.Phone}}<div>{{.Labels.Phone}}: {{.Page1.Doer.Phone}}</div>{{end}}
    </div>
  </div>

  <h2>{{.Labels.Financial}}</h2>
  <dl>
    <dt>{{.Labels.Budget}}</dt><dd>{{.Page1.Budget}}</dd>
    <dt>{{.Labels.PaymentTerms}}</dt><dd>{{.Page1.PaymentTerms}}</dd>
  </dl>

  <h2>{{.Labels.Timeline}}</h2>
  <dl>
    <dt>{{.Labels.StartDate}}</dt><dd>{{.Page1.StartDate}}</dd>
    <dt>{{.Labels.EndDate}}</dt><dd>{{.Page1.EndDate}}</dd>
    {{if .Page1.Duration}}<dt>{{.Labels.Duration}}</dt><dd>{{.Page1.Duration}}</dd>{{end}}
  </dl>

  <h2>{{.Labels.Deliverables}}</h2>
  <ol>
    {{range .Page1.Deliverables}}<li>{{.}}</li>{{end}}
  </ol>

  <div class="footer">{{.Labels.PageOne}}</div>
</div>

<div class="page {{if .RTL}}rtl{{else}}ltr{{end}}">
  <div class="columns">
    <div class="col">
      <h2>{{.Labels.PlatformRules}}</h2>
      <div class="meta">{{.Labels.RulesVersion}}: {{.Page2.RulesVersion}}</div>
      <ol>
        {{range .Page2.PlatformRules}}<li>{{.}}</li>{{end}}
      </ol>
    </div>
    <div class="col">
      <h2>{{.Labels.PosterRules}}</h2>
      <ol>
        {{range .Page2.PosterRules}}<li>{{.}}</li>{{end}}
      </ol>
    </div>
  </div>

  <h2>{{.Labels.Signatures}}</h2>
  <div class="columns">
    <div class="col sig">
      <div class="who">{{.Labels.Poster}}</div>
      <div>{{.Page2.Poster.Name}}</div>
      {{if .Page2.Poster.Signed}}
      <div>{{.Labels.SignedAt}}: {{.Page2.Poster.SignedAt}}</div>
      <div>{{.Labels.Token}}: <span class="token">{{.Page2.Poster.TokenPreview}}</span></div>
      {{else}}
      <div class="pending">{{.Labels.NotSigned}}</div>
      {{end}}
    </div>
    <div class="col sig">
      <div class="who">{{.Labels.Doer}}</div>
      <div>{{.Page2.Doer.Name}}</div>
      {{if .Page2.Doer.Signed}}
      <div>{{.Labels.SignedAt}}: {{.Page2.Doer.SignedAt}}</div>
      <div>{{.Labels.Token}}: <span class="token">{{.Page2.Doer.TokenPreview}}</span></div>
      {{else}}
      <div class="pending">{{.Labels.NotSigned}}</div>
      {{end}}
    </div>
  </div>

  <div class="footer">{{.Labels.PageTwo}}</div>
</div>
</body>
</html>
`
