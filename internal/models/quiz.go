package models

import "time"

// Quiz представляет викторину по одной теме предмета.
type Quiz struct {
	UID       string    `json:"id"`
	SubjectID string    `json:"subjectId"`
	Title     string    `json:"title"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

// Question представляет вопрос викторины с четырьмя вариантами ответа.
// CorrectAnswer всегда одна из букв A, B, C, D.
type Question struct {
	UID           string  `json:"id"`
	QuizUID       string  `json:"quizId"`
	Question      string  `json:"question"`
	OptionA       string  `json:"optionA"`
	OptionB       string  `json:"optionB"`
	OptionC       string  `json:"optionC"`
	OptionD       string  `json:"optionD"`
	CorrectAnswer string  `json:"correctAnswer"`
	Explanation   *string `json:"explanation,omitempty"`
}

// Attempt — неизменяемая запись одной попытки прохождения викторины.
type Attempt struct {
	UID            string    `json:"id"`
	UserUID        string    `json:"userId"`
	QuizUID        string    `json:"quizId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
}
