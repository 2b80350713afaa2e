package classify

import (
	"regexp"
	"strings"
)

// RE2 has no Unicode-aware \b, so word edges are spelled out. The boundary
// runes are consumed; count() restarts after the term to keep adjacent hits.
const (
	edgeBefore = `(?:^|[^\p{L}\p{N}_])`
	edgeAfter  = `(?:$|[^\p{L}\p{N}_])`
)

func words(terms ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + edgeBefore + `(` + strings.Join(terms, "|") + `)` + edgeAfter)
}

// count returns the number of non-overlapping term matches in s.
func count(re *regexp.Regexp, s string) int {
	n := 0
	for s != "" {
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		n++
		s = s[loc[3]:]
	}
	return n
}

var internshipTitleTerms = []string{
	// en
	`intern`,
	`internship`,
	`co[- ]?op`,
	`trainee`,
	`working[- ]student`,
	`summer[- ]?intern(ship)?`,
	// fr
	`stage`,
	`stagiaire`,
	`stage\s+(de|en)`,
	`pfe`,
	`(projet|projet de) fin d[’']études`,
	`alternance`,
	`alternant(e)?`,
	`apprentissage`,
	`contrat d[’']?apprentissage`,
	`contrat de professionn?alisation`,
}

var internshipBodyTerms = append(append([]string{}, internshipTitleTerms...),
	`placement`,
	`industrial placement`,
	`graduate? program`,
	`junior`,
	`étudiant(e)?`,
	`jeune diplômé(e)?`,
	`VIE`,
)

var seniorityTerms = []string{
	`director`,
	`manager`,
	`head`,
	`architect`,
	`senior`,
	`staff`,
	`lead`,
	`principal`,
}

// Bucket is a named domain-relevance category.
type Bucket struct {
	Name  string
	Label string // tag emitted for the bucket; empty means no tag
	re    *regexp.Regexp
}

func bucket(name, label string, terms ...string) Bucket {
	return Bucket{Name: name, Label: label, re: words(terms...)}
}

// Match reports whether any bucket term occurs in text.
func (b Bucket) Match(text string) bool {
	return b.re.MatchString(text)
}

// Buckets is the fixed set of CS relevance buckets, in tag order.
var Buckets = []Bucket{
	bucket("backend", "backend",
		`backend`, `back[- ]?end`, `api`,
		`microservices?`, `distributed systems?`,
		`scalab(le|ility)`, `concurrency`),
	bucket("frontend", "frontend",
		`frontend`, `front[- ]?end`, `ui`, `ux`,
		`react`, `vue`, `angular`, `typescript`, `javascript`),
	bucket("mobile", "mobile",
		`mobile`, `android`, `ios`, `swift`, `kotlin`,
		`react native`, `flutter`),
	bucket("data", "data",
		`data engineer`, `data scientist`, `data analyst`,
		`(etl|elt)`, `data (platform|pipeline)`,
		`sql`, `warehouse`, `lacke?`, `spark`, `hadoop`,
		`dbt`, `airflow`, `bigquery`, `snowflake`, `postgres`, `mysql`),
	bucket("ai-ml", "ai-ml",
		`ml`, `machine learning`, `apprentissage automatique`,
		`deep[- ]?learning`, `(pytorch|tensorflow|keras)`,
		`nlp`, `natural language`,
		`computer vision`, `vision par ordinateur`,
		`reinforcement learning`,
		`ml[- ]?ops?`),
	bucket("devops-sre", "devops-sre",
		`devops`, `sre`, `site reliability`,
		`kubernetes`, `docker`, `terraform`, `ansible`,
		`ci/?cd`, `prometheus`, `grafana`,
		`aws`, `gcp`, `azure`,
		`cloud`, `platform engineer`),
	bucket("security", "security",
		`(security|sécurité)`, `appsec`, `cyber`,
		`pentest(ing)?`, `siem`, `soc`, `iam`,
		`zero[- ]?trust`, `cryptograph(y|ie)`),
	bucket("systems-embedded", "systems",
		`system(s)?`, `kernel`, `embedded`, `firmware`,
		`rtos`, `temps réel`, `dsp`),
	bucket("languages", "",
		`python`, `java`, `c\+\+`, `c#`,
		`golang`, `rust`, `typescript`, `node\.?js`),
}

// techKeywords are matched as plain substrings of the lowercased text.
var techKeywords = []string{
	"python", "java", "c++", "c#", "golang", "rust",
	"typescript", "javascript", "react", "node", "kubernetes",
	"docker", "sql", "postgres", "pytorch", "tensorflow",
	"spark", "airflow", "dbt",
}

var franceHints = []string{
	`france`, `fr`,
	`paris`, `lyon`, `lille`, `nantes`, `rennes`,
	`toulouse`, `bordeaux`, `marseille`, `grenoble`, `nice`,
	`strasbourg`, `montpellier`,
	`[iî]le[- ]?de[- ]?france`,
	`remote france`, `france remote`,
}

var remoteHints = []string{
	`remote`, `fully remote`, `full remote`, `work from home`,
	`télétravail`, `teletravail`, `à distance`,
}

var (
	internshipTitleRe = words(internshipTitleTerms...)
	internshipBodyRe  = words(internshipBodyTerms...)
	seniorityRe       = words(seniorityTerms...)
	franceRe          = words(franceHints...)
	remoteRe          = words(remoteHints...)
)
