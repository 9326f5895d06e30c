package notification

import "fmt"

// Render maps an event name plus payload data to a title and body.
// Unknown events get a generic rendering rather than an error: a notification
// the template set lags behind is still worth delivering.
func Render(event string, data map[string]string) (title, body string) {
	get := func(key string) string { return data[key] }

	switch event {
	case EventSubscriptionCreated:
		title = "Subscription created"
		body = fmt.Sprintf("Your %s subscription at %s is awaiting payment.", get("plan"), get("gym"))
	case EventSubscriptionActivated:
		title = "Subscription active"
		body = fmt.Sprintf("Your subscription at %s is now active until %s. See you at the gym!", get("gym"), get("end_date"))
	case EventPaymentInitiated:
		title = "Payment initiated"
		body = fmt.Sprintf("We created a payment order of %s for your subscription at %s.", get("amount"), get("gym"))
	case EventPaymentCompleted:
		title = "Payment received"
		body = fmt.Sprintf("We received your payment of %s for %s.", get("amount"), get("gym"))
	case EventPaymentFailed:
		title = "Payment failed"
		body = fmt.Sprintf("A payment for your subscription at %s could not be verified. Please try again.", get("gym"))
	case EventMemberJoined:
		title = "New member"
		body = fmt.Sprintf("%s just purchased the %s plan at %s.", get("member"), get("plan"), get("gym"))
	case EventMemberAdded:
		title = "Member added"
		body = fmt.Sprintf("%s was added to %s at the front desk.", get("member"), get("gym"))
	case EventAccessCodeIssued:
		title = "Your access code"
		body = fmt.Sprintf("Present code %s at %s to check in.", get("access_code"), get("gym"))
	case EventSettlementCreated:
		title = "Settlement created"
		body = fmt.Sprintf("A settlement of %s covering %s payments was created for %s.", get("amount"), get("count"), get("gym"))
	case EventSettlementProcessed:
		title = "Settlement paid out"
		body = fmt.Sprintf("Your settlement for %s was processed. Reference: %s.", get("gym"), get("transaction_id"))
	default:
		title = "Notification"
		body = fmt.Sprintf("Event: %s", event)
	}

	return title, body
}
