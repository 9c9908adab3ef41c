package constants

const (
	ParserExchange = "parser_exchange"

	// Событие о завершении запуска, его слушает задача обработки фотографий
	RoutingKeyImageJob = "images.watermark.process"
	EventRunCompleted  = "parsing.run.completed"
)
