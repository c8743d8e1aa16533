package extract

// jobEntitySchema constrains the structured payload the model must return
// for a job posting. Validation happens before any entity is constructed.
const jobEntitySchema = `{
  "type": "object",
  "properties": {
    "company": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "salary": {"type": "string"},
    "city": {"type": "string"},
    "state": {"type": "string"},
    "country": {"type": "string"},
    "experience": {
      "type": "array",
      "items": {"type": "string"}
    },
    "technical_skills": {
      "type": "array",
      "items": {"type": "string"}
    },
    "summary": {"type": "string", "minLength": 1},
    "work_arrangement": {"type": "string"},
    "work_location": {"type": "string"},
    "company_details": {"type": "string"}
  },
  "required": ["company", "title", "experience", "technical_skills", "work_arrangement", "work_location", "summary"],
  "additionalProperties": true
}`

// searchPlanSchema constrains the synthesized up-skilling query list.
const searchPlanSchema = `{
  "type": "object",
  "properties": {
    "queries": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 3
    },
    "lang": {"type": "string", "minLength": 2}
  },
  "required": ["queries", "lang"],
  "additionalProperties": false
}`

const jobEntityPrompt = `You are an expert job posting parser. Extract structured information from the raw posting text below.

Return ONLY valid JSON matching this exact structure:
{
  "company": "string (required) // hiring company name",
  "title": "string (required) // position title",
  "salary": "string // compensation as written, or \"Not Specified\"",
  "city": "string // or \"Not Specified\"",
  "state": "string // or \"Not Specified\"",
  "country": "string // or \"Not Specified\"",
  "experience": ["string"] // required; experience expectations, copied verbatim,
  "technical_skills": ["string"] // required; individual technologies and skills named in the posting,
  "summary": "string (required) // summary of the role, between 30 to 60 words",
  "work_arrangement": "string (required) // one of: Full Time, Part Time, Internship, Contract, Not Specified",
  "work_location": "string (required) // one of: Onsite, Remote, Hybrid, Not Specified",
  "company_details": "string // what the company does, if stated"
}

IMPORTANT:
- Extract information directly from the text, do not invent or summarize beyond the summary field.
- Use "Not Specified" when the posting does not state a value.
- Return ONLY the JSON object, no markdown, no explanation, no code blocks.

Input text:
"""
%s
"""
`

const searchPlanPrompt = `You are a career coach. Given the job posting below, propose web search queries a candidate should run to close skill gaps for this role.

Return ONLY valid JSON matching this exact structure:
{
  "queries": ["string"] // at least 3 focused search queries, most important first,
  "lang": "string" // ISO 639-1 language code of the posting, e.g. "en"
}

IMPORTANT:
- Queries must target learning resources for the posting's hardest requirements.
- Return ONLY the JSON object, no markdown, no explanation, no code blocks.

Input text:
"""
%s
"""
`
