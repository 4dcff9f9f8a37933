package appcore

import "context"

// UseCase - базовый интерфейс для всех use cases
// TCommand - тип команды (входные данные)
// TResult - тип результата (выходные данные)
type UseCase[TCommand any, TResult any] interface {
	Execute(ctx context.Context, cmd TCommand) (TResult, error)
}

// Command - маркер интерфейс для команд (изменяют состояние)
type Command interface {
	CommandName() string
}

// Query - маркер интерфейс для запросов (только чтение)
type Query interface {
	QueryName() string
}

// Result - базовая структура результата
type Result[T any] struct {
	Value T
	Error error
}
