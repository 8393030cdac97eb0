package output

// SMSPublisher is an output port (secondary port) for the SMS side-channel
// Secondary adapters (RabbitMQ implementations) will implement this
type SMSPublisher interface {
	// PublishSMS queues an SMS for delivery by the worker
	PublishSMS(to, text string) error
	// Close closes the messaging connection
	Close() error
}
