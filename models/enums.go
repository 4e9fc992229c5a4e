package models

// ContractStatus is derived from "today" relative to a contract's milestone
// dates. It is never persisted; list/detail endpoints compute it on read.
type ContractStatus string

const (
	ContractStatusActive            ContractStatus = "ACTIVE"
	ContractStatusPenaltyFree       ContractStatus = "PENALTY_FREE"
	ContractStatusRecommendedChange ContractStatus = "RECOMMENDED_CHANGE"
	ContractStatusExpiringSoon      ContractStatus = "EXPIRING_SOON"
	ContractStatusExpired           ContractStatus = "EXPIRED"
	ContractStatusInvalidDate       ContractStatus = "INVALID_DATE"
)

type ContractType string

const (
	ContractTypeElectricity ContractType = "ELECTRICITY"
	ContractTypeGas         ContractType = "GAS"
)

func (t ContractType) IsValid() bool {
	switch t {
	case ContractTypeElectricity, ContractTypeGas:
		return true
	}
	return false
}

type NotificationType string

const (
	NotificationTypePenaltyFree NotificationType = "PENALTY_FREE"
	NotificationTypeRecommended NotificationType = "RECOMMENDED"
	NotificationTypeExpiry      NotificationType = "EXPIRY"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypePenaltyFree, NotificationTypeRecommended, NotificationTypeExpiry:
		return true
	}
	return false
}

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// NotificationChannel is the outbound transport. DASHBOARD is record-only:
// no external send is attempted, the record itself is the delivery.
type NotificationChannel string

const (
	NotificationChannelEmail     NotificationChannel = "EMAIL"
	NotificationChannelSms       NotificationChannel = "SMS"
	NotificationChannelWhatsapp  NotificationChannel = "WHATSAPP"
	NotificationChannelDashboard NotificationChannel = "DASHBOARD"
)

func (c NotificationChannel) IsExternal() bool {
	switch c {
	case NotificationChannelEmail, NotificationChannelSms, NotificationChannelWhatsapp:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAdmin    UserRole = "A"
	UserRoleOperator UserRole = "O"
)

func (r UserRole) Display() string {
	if r == UserRoleAdmin {
		return "Admin"
	}
	return "Operator"
}
