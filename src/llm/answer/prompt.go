package answer

import (
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const (
	VarContext  = "context"
	VarQuestion = "question"
)

const DefaultUnknownAnswer = "I don't know the answer."

func getSystemTemplate() string {
	return `You are an assistant that helps to form nice and human understandable answers.
The information part contains the provided information that you must use to construct an answer.
The provided information is authoritative, you must never doubt it or try to use your internal knowledge to correct it.
Make the answer sound as a response to the question. Do not mention that you based the result on the given information.
If the provided information is empty, say that you don't know the answer.
Final answer should be easily readable and structured.`
}

func getUserTemplate() string {
	return `Information:
{context}

Question: {question}
Helpful Answer:`
}

func createAnswerTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(getSystemTemplate()),
		schema.UserMessage(getUserTemplate()),
	)
}
