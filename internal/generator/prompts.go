package generator

import "fmt"

// Температуры генерации
const (
	topicTemperature   float32 = 0.7
	welcomeTemperature float32 = 0.6
)

// welcomeTopic фиксированная тема приветственного поста
const welcomeTopic = "welcome to an AI-powered blog where every post is written and illustrated by generative models"

func topicPrompt(topic string) string {
	return fmt.Sprintf(`Write an engaging, well-structured blog post about the topic: "%s".

Return ONLY a JSON object with the following keys:
{
  "title": "a catchy title for the post",
  "content": "the full body of the post, at least three paragraphs, paragraphs separated by blank lines",
  "imagePrompt": "a short, vivid description of an illustration for this post, suitable for an image generation model"
}

Do not wrap the JSON in markdown and do not add any text outside of it.`, topic)
}

func welcomePrompt() string {
	return fmt.Sprintf(`Write a short, friendly blog post for the topic: "%s".
Greet the reader, explain that they can type any topic to get a fresh post with an illustration, and keep it under three paragraphs.

Return ONLY a JSON object with the following keys:
{
  "title": "a welcoming title",
  "content": "the body of the post"
}

Do not wrap the JSON in markdown and do not add any text outside of it.`, welcomeTopic)
}
