package cypher

import (
	"cypher_chat/src/model"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// Template variables filled at Translate time
const (
	VarSchema   = "schema"
	VarExamples = "examples"
	VarQuestion = "question"
)

var DefaultForbiddenKeywords = []string{"EXISTS", "SIZE", "HAVING"}

const DefaultNeo4jVersion = 5

func getSystemTemplate() string {
	return `You are an expert Neo4j Cypher translator who converts English to Cypher based on the Neo4j Schema provided, following the instructions below:
1. Generate Cypher query compatible ONLY for Neo4j Version {VERSION}
2. Do not use {FORBIDDEN} keywords in the cypher. Use alias when using the WITH keyword
3. Use only Nodes and relationships mentioned in the schema
4. Always do a case-insensitive and fuzzy search for any properties related search. Eg: to search for a Client, use ` + "`toLower(client.id) contains 'neo4j'`" + `. To search for Slack Messages, use ` + "`toLower(SlackMessage.text) contains 'neo4j'`" + `. To search for a project, use ` + "`toLower(project.summary) contains 'logistics platform' OR toLower(project.name) contains 'logistics platform'`" + `.
5. Never use relationships that are not mentioned in the given schema
6. When asked about projects, Match the properties using case-insensitive matching and the OR-operator, E.g, to find a logistics platform -project, use ` + "`toLower(project.summary) contains 'logistics platform' OR toLower(project.name) contains 'logistics platform'`" + `.
7. Return only the Cypher query, without explanations.`
}

func getUserTemplate() string {
	return `schema: {schema}

Examples:
{examples}

Question: {question}`
}

// createCypherTemplate builds the translation ChatTemplate. Static rule values are
// substituted up front; schema, examples and question stay template variables.
func createCypherTemplate(config model.TranslatorConfig) prompt.ChatTemplate {
	version := config.Neo4jVersion
	if version <= 0 {
		version = DefaultNeo4jVersion
	}
	forbidden := config.ForbiddenKeywords
	if len(forbidden) == 0 {
		forbidden = DefaultForbiddenKeywords
	}

	replacer := strings.NewReplacer(
		"{VERSION}", strconv.Itoa(version),
		"{FORBIDDEN}", strings.Join(forbidden, ", "),
	)
	systemText := replacer.Replace(getSystemTemplate())

	messages := []schema.MessagesTemplate{
		schema.SystemMessage(systemText),
		schema.UserMessage(getUserTemplate()),
	}

	return prompt.FromMessages(schema.FString, messages...)
}

// FormatExamples renders few-shot pairs the way the model is asked to answer
func FormatExamples(examples []model.CypherExample) string {
	var b strings.Builder
	for i, ex := range examples {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Question: %s\nAnswer: ```%s```", strings.TrimSpace(ex.Question), strings.TrimSpace(ex.Cypher))
	}
	return b.String()
}
