package lesson

import (
	"fmt"
	"strings"

	"github.com/abhisek/dailytutor/internal/topic"
)

// FallbackText is shown when the backend produced no usable text after all
// retries. It must make sense for any topic and any step.
const FallbackText = "Сейчас не получилось загрузить материал. Попробуй перечитать тему в учебнике или конспекте и переходи дальше — мы вернёмся к ней в следующий раз."

const plainTextRules = `Пиши простым текстом без Markdown и LaTeX. Формулы записывай обычными символами (например, F = m*a, x^2).`

var explanationPhrases = []string{
	"Подбираю понятные слова…",
	"Вспоминаю главное по теме…",
	"Собираю объяснение…",
	"Почти готово…",
}

var examplePhrases = []string{
	"Ищу хороший пример…",
	"Расписываю решение по шагам…",
	"Проверяю вычисления…",
}

var taskPhrases = []string{
	"Придумываю задачу…",
	"Подбираю сложность…",
	"Формулирую условие…",
}

// VerifyPhrases rotate while an answer is being checked.
var VerifyPhrases = []string{
	"Проверяю ответ…",
	"Сверяю с решением…",
	"Ещё секунду…",
}

// SolutionPhrases rotate while a worked solution is being prepared.
var SolutionPhrases = []string{
	"Готовлю разбор…",
	"Расписываю решение…",
}

// BuildSteps returns the three steps for a topic in session order.
func BuildSteps(t topic.Topic) [StepCount]Step {
	return [StepCount]Step{
		{Kind: KindExplanation, Prompt: explanationPrompt(t), LoaderPhrases: explanationPhrases},
		{Kind: KindExample, Prompt: examplePrompt(t), LoaderPhrases: examplePhrases},
		{Kind: KindTask, Prompt: taskPrompt(t), LoaderPhrases: taskPhrases},
	}
}

func header(t topic.Topic) string {
	return fmt.Sprintf("Предмет: %s\nТема: %s\n\n", t.Subject, t.Topic)
}

func explanationPrompt(t topic.Topic) string {
	var b strings.Builder
	b.WriteString(header(t))
	b.WriteString(`Ты — терпеливый репетитор, готовящий школьника к экзамену.
Объясни эту тему за 5–7 предложений: главная идея, ключевая формула или правило, типичная ошибка.
`)
	b.WriteString(plainTextRules)
	return b.String()
}

func examplePrompt(t topic.Topic) string {
	var b strings.Builder
	b.WriteString(header(t))
	b.WriteString(`Покажи один разобранный пример экзаменационного уровня по этой теме.
Сначала условие, затем решение пронумерованными шагами, в конце ответ.
`)
	b.WriteString(plainTextRules)
	return b.String()
}

func taskPrompt(t topic.Topic) string {
	var b strings.Builder
	b.WriteString(header(t))
	b.WriteString(`Дай одну задачу для самостоятельного решения по этой теме, похожую на разобранный пример, но с другими данными.
Ответ должен быть коротким (число или одно слово). Не пиши решение и ответ.
`)
	b.WriteString(plainTextRules)
	return b.String()
}

// VerifyPrompt asks the backend to check the learner's answer to the task.
// The reply must start with a verdict word so it can be classified.
func VerifyPrompt(t topic.Topic, task, answer string) string {
	var b strings.Builder
	b.WriteString(header(t))
	b.WriteString("Задача:\n")
	b.WriteString(strings.TrimSpace(task))
	b.WriteString("\n\nОтвет ученика:\n")
	b.WriteString(strings.TrimSpace(answer))
	b.WriteString(`

Проверь ответ ученика. Начни ответ со слова «Правильно!» если ответ верный, или со слова «Неверно.» если нет.
Затем в 1–3 предложениях объясни почему. Если ответ неверный, не называй правильный ответ.
`)
	b.WriteString(plainTextRules)
	return b.String()
}

// SolutionPrompt asks for a full worked solution of the task.
func SolutionPrompt(t topic.Topic, task string) string {
	var b strings.Builder
	b.WriteString(header(t))
	b.WriteString("Задача:\n")
	b.WriteString(strings.TrimSpace(task))
	b.WriteString(`

Покажи полное решение этой задачи пронумерованными шагами и в конце чётко назови правильный ответ.
`)
	b.WriteString(plainTextRules)
	return b.String()
}
