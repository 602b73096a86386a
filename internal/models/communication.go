package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Communication message types.
const (
	MessageDriverHospital   = "driver_hospital"
	MessageHospitalHospital = "hospital_hospital"
	MessageSystem           = "system"
)

// Communication is an append-only log entry for messages exchanged around a
// referral, including system-generated notification records.
type Communication struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID   string             `bson:"patient_id,omitempty" json:"patient_id,omitempty"`
	AmbulanceID string             `bson:"ambulance_id,omitempty" json:"ambulance_id,omitempty"`
	Sender      string             `bson:"sender" json:"sender"`
	Receiver    string             `bson:"receiver" json:"receiver"`
	Message     string             `bson:"message" json:"message"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	MessageType string             `bson:"message_type" json:"message_type"`
}

// HandoverForm captures the clinical snapshot recorded when a patient is
// handed over at the receiving facility.
type HandoverForm struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID          string             `bson:"patient_id" json:"patient_id"`
	PatientName        string             `bson:"patient_name" json:"patient_name"`
	Age                int                `bson:"age" json:"age"`
	Condition          string             `bson:"condition" json:"condition"`
	ReferringHospital  string             `bson:"referring_hospital" json:"referring_hospital"`
	ReceivingHospital  string             `bson:"receiving_hospital" json:"receiving_hospital"`
	ReferringPhysician string             `bson:"referring_physician" json:"referring_physician"`
	ReceivingPhysician string             `bson:"receiving_physician,omitempty" json:"receiving_physician,omitempty"`
	TransferTime       time.Time          `bson:"transfer_time" json:"transfer_time"`
	VitalSigns         map[string]string  `bson:"vital_signs,omitempty" json:"vital_signs,omitempty"`
	MedicalHistory     string             `bson:"medical_history,omitempty" json:"medical_history,omitempty"`
	CurrentMedications string             `bson:"current_medications,omitempty" json:"current_medications,omitempty"`
	Allergies          string             `bson:"allergies,omitempty" json:"allergies,omitempty"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	AmbulanceID        string             `bson:"ambulance_id,omitempty" json:"ambulance_id,omitempty"`
	CreatedBy          string             `bson:"created_by" json:"created_by"`
}
