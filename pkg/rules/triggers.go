package rules

const (
	TRIGGER_BOOKING_CREATED     string = "booking_created"
	TRIGGER_BOOKING_MODIFIED    string = "booking_modified"
	TRIGGER_BOOKING_CANCELLED   string = "booking_cancelled"
	TRIGGER_VOUCHER_UPLOADED    string = "voucher_uploaded"
	TRIGGER_VOUCHER_APPROACHING string = "voucher_deadline_approaching"
	TRIGGER_VOUCHER_MISSED      string = "voucher_deadline_missed"
	TRIGGER_GUIDE_ASSIGNED      string = "guide_assigned"
	TRIGGER_ESCORT_ASSIGNED     string = "escort_assigned"
	TRIGGER_ASSIGNMENT_REMOVED  string = "assignment_removed"
	TRIGGER_SLOT_MISSING_GUIDE  string = "slot_missing_guide"
	TRIGGER_SLOT_PLACEHOLDER    string = "slot_placeholder_guide"
	TRIGGER_AGE_MISMATCH        string = "age_mismatch"
	TRIGGER_SYNC_FAILURE        string = "sync_failure"

	FIELDTYPE_STRING string = "string"
	FIELDTYPE_NUMBER string = "number"
	FIELDTYPE_BOOL   string = "bool"
)

// TriggerField declares an event attribute a trigger is known to carry.
// The catalog only constrains the rule-authoring surface, which filters
// the offered operators by the field's declared type. The evaluator
// itself stays generic over field names.
type TriggerField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type Trigger struct {
	Name   string         `json:"name"`
	Label  string         `json:"label"`
	Fields []TriggerField `json:"fields"`
}

var bookingFields = []TriggerField{
	{Name: "booking_id", Label: "Booking ID", Type: FIELDTYPE_STRING},
	{Name: "tour_code", Label: "Tour code", Type: FIELDTYPE_STRING},
	{Name: "tour_date", Label: "Tour date", Type: FIELDTYPE_STRING},
	{Name: "customer_name", Label: "Customer name", Type: FIELDTYPE_STRING},
	{Name: "ticket_count", Label: "Ticket count", Type: FIELDTYPE_NUMBER},
	{Name: "total_amount", Label: "Total amount", Type: FIELDTYPE_NUMBER},
	{Name: "channel", Label: "Sales channel", Type: FIELDTYPE_STRING},
	{Name: "has_voucher", Label: "Has voucher", Type: FIELDTYPE_BOOL},
}

var voucherFields = []TriggerField{
	{Name: "voucher_id", Label: "Voucher ID", Type: FIELDTYPE_STRING},
	{Name: "booking_id", Label: "Booking ID", Type: FIELDTYPE_STRING},
	{Name: "supplier", Label: "Supplier", Type: FIELDTYPE_STRING},
	{Name: "deadline", Label: "Deadline", Type: FIELDTYPE_STRING},
	{Name: "days_left", Label: "Days left", Type: FIELDTYPE_NUMBER},
}

var assignmentFields = []TriggerField{
	{Name: "assignment_id", Label: "Assignment ID", Type: FIELDTYPE_STRING},
	{Name: "tour_code", Label: "Tour code", Type: FIELDTYPE_STRING},
	{Name: "tour_date", Label: "Tour date", Type: FIELDTYPE_STRING},
	{Name: "slot", Label: "Slot", Type: FIELDTYPE_STRING},
	{Name: "person_name", Label: "Guide/escort name", Type: FIELDTYPE_STRING},
	{Name: "role", Label: "Role", Type: FIELDTYPE_STRING},
	{Name: "is_placeholder", Label: "Placeholder", Type: FIELDTYPE_BOOL},
}

// Triggers is the fixed vocabulary of business events rules can
// subscribe to. Static configuration, not computed.
var Triggers = []Trigger{
	{Name: TRIGGER_BOOKING_CREATED, Label: "Booking created", Fields: bookingFields},
	{Name: TRIGGER_BOOKING_MODIFIED, Label: "Booking modified", Fields: bookingFields},
	{Name: TRIGGER_BOOKING_CANCELLED, Label: "Booking cancelled", Fields: bookingFields},
	{Name: TRIGGER_VOUCHER_UPLOADED, Label: "Voucher uploaded", Fields: voucherFields},
	{Name: TRIGGER_VOUCHER_APPROACHING, Label: "Voucher deadline approaching", Fields: voucherFields},
	{Name: TRIGGER_VOUCHER_MISSED, Label: "Voucher deadline missed", Fields: voucherFields},
	{Name: TRIGGER_GUIDE_ASSIGNED, Label: "Guide assigned", Fields: assignmentFields},
	{Name: TRIGGER_ESCORT_ASSIGNED, Label: "Escort assigned", Fields: assignmentFields},
	{Name: TRIGGER_ASSIGNMENT_REMOVED, Label: "Assignment removed", Fields: assignmentFields},
	{Name: TRIGGER_SLOT_MISSING_GUIDE, Label: "Slot missing guide", Fields: assignmentFields},
	{Name: TRIGGER_SLOT_PLACEHOLDER, Label: "Slot has placeholder guide", Fields: assignmentFields},
	{Name: TRIGGER_AGE_MISMATCH, Label: "Guide age mismatch", Fields: []TriggerField{
		{Name: "booking_id", Label: "Booking ID", Type: FIELDTYPE_STRING},
		{Name: "guide_name", Label: "Guide name", Type: FIELDTYPE_STRING},
		{Name: "required_age", Label: "Required age", Type: FIELDTYPE_NUMBER},
		{Name: "guide_age", Label: "Guide age", Type: FIELDTYPE_NUMBER},
	}},
	{Name: TRIGGER_SYNC_FAILURE, Label: "Sync failure", Fields: []TriggerField{
		{Name: "source", Label: "Source system", Type: FIELDTYPE_STRING},
		{Name: "error", Label: "Error", Type: FIELDTYPE_STRING},
		{Name: "retryable", Label: "Retryable", Type: FIELDTYPE_BOOL},
	}},
}

func TriggerByName(name string) (*Trigger, bool) {
	for i := range Triggers {
		if Triggers[i].Name == name {
			return &Triggers[i], true
		}
	}
	return nil, false
}

// OperatorsForType lists the operators the authoring UI offers for a
// declared field type. Presence checks apply to every type.
func OperatorsForType(fieldType string) []string {
	common := []string{OP_IS_EMPTY, OP_IS_NOT_EMPTY}
	switch fieldType {
	case FIELDTYPE_STRING:
		return append([]string{
			OP_EQUALS, OP_NOT_EQUALS,
			OP_CONTAINS, OP_NOT_CONTAINS,
			OP_STARTS_WITH, OP_ENDS_WITH,
		}, common...)
	case FIELDTYPE_NUMBER:
		return append([]string{
			OP_EQUALS, OP_NOT_EQUALS,
			OP_GREATER, OP_LESS,
			OP_GREATER_OR_EQUAL, OP_LESS_OR_EQUAL,
		}, common...)
	case FIELDTYPE_BOOL:
		return append([]string{OP_IS_TRUE, OP_IS_FALSE}, common...)
	}
	return common
}
