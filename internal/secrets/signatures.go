package secrets

import "regexp"

// Signature is one credential pattern. Group 1 of Pattern is the value that
// is checked against placeholders and redacted in output.
type Signature struct {
	Label   string
	Pattern *regexp.Regexp
}

func sig(label, pattern string) Signature {
	return Signature{Label: label, Pattern: regexp.MustCompile(pattern)}
}

// Signatures is ordered from most to least specific. The first signature
// with an accepted match wins for a line.
var Signatures = []Signature{
	sig("AWS Access Key ID", `\b((?:AKIA|ASIA|ABIA|ACCA)[0-9A-Z]{16})\b`),
	sig("AWS Secret Access Key", `(?i)aws_?secret_?(?:access_?)?key["']?\s*(?:=|:|=>)\s*["']?([A-Za-z0-9/+=]{40})\b`),
	sig("GitHub Token", `\b((?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36,255})\b`),
	sig("GitHub Fine-Grained Token", `\b(github_pat_[A-Za-z0-9_]{22,255})\b`),
	sig("GitLab Personal Access Token", `\b(glpat-[A-Za-z0-9_\-]{20,})\b`),
	sig("Slack Token", `\b(xox[baprs]-[A-Za-z0-9-]{10,})\b`),
	sig("Slack Webhook URL", `(https://hooks\.slack\.com/services/[A-Za-z0-9/_]{20,})`),
	sig("Stripe Secret Key", `\b((?:sk|rk)_live_[A-Za-z0-9]{20,})\b`),
	sig("Google API Key", `\b(AIza[0-9A-Za-z_\-]{35})\b`),
	sig("Anthropic API Key", `\b(sk-ant-[A-Za-z0-9_\-]{20,})`),
	sig("OpenAI API Key", `\b(sk-(?:proj-)?[A-Za-z0-9_\-]{20,})`),
	sig("SendGrid API Key", `\b(SG\.[A-Za-z0-9_\-]{22}\.[A-Za-z0-9_\-]{43})\b`),
	sig("npm Access Token", `\b(npm_[A-Za-z0-9]{36})\b`),
	sig("Twilio API Key", `\b(SK[0-9a-fA-F]{32})\b`),
	sig("Private Key", `(-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP |ENCRYPTED )?PRIVATE KEY(?: BLOCK)?-----)`),
	sig("JSON Web Token", `\b(eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,})`),
	sig("Database URL with Credentials", `(?i)\b(?:postgres(?:ql)?|mysql|mariadb|mongodb(?:\+srv)?|redis|amqps?)://[^:\s/@]+:([^@\s/]+)@`),
	sig("Generic Secret", `(?i)[A-Za-z0-9_.-]*(?:api_?key|apikey|secret|token|passwd|password|pwd|credential|private_?key|access_?key)[A-Za-z0-9_.-]*["'\]]{0,2}\s*(?:=|:|=>|:=)\s*["']([^"'\s]{8,})["']`),
	sig("Generic Secret", `(?i)^\s*(?:export\s+)?[A-Z0-9_]*(?:API_?KEY|SECRET|TOKEN|PASSWORD|PASSWD|PRIVATE_?KEY|ACCESS_?KEY)[A-Z0-9_]*\s*=\s*([^\s"'#]{8,})\s*$`),
}
