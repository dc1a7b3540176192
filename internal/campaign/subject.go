package campaign

import (
	"fmt"
	"strings"
	"time"
)

// EmploymentType classifies the reviewed identity's relationship to the org.
type EmploymentType string

const (
	EmploymentUnspecified EmploymentType = ""
	EmploymentEmployee    EmploymentType = "employee"
	EmploymentContractor  EmploymentType = "contractor"
	EmploymentVendor      EmploymentType = "vendor"
)

// ReviewStatus tracks per-subject review progress.
type ReviewStatus string

const (
	ReviewPending    ReviewStatus = "PENDING"
	ReviewInProgress ReviewStatus = "IN_PROGRESS"
	ReviewCompleted  ReviewStatus = "COMPLETED"
)

// PrivilegeLevel ranks how much power an access item grants.
type PrivilegeLevel string

const (
	PrivilegeUnspecified PrivilegeLevel = ""
	PrivilegeStandard    PrivilegeLevel = "standard"
	PrivilegeElevated    PrivilegeLevel = "elevated"
	PrivilegeAdmin       PrivilegeLevel = "admin"
	PrivilegeSuperAdmin  PrivilegeLevel = "super_admin"
)

// IsPrivileged reports whether this level triggers second-level approval.
func (p PrivilegeLevel) IsPrivileged() bool {
	return p == PrivilegeAdmin || p == PrivilegeSuperAdmin
}

// DataClassification ranks the sensitivity of data the item reaches.
type DataClassification string

const (
	ClassificationUnspecified  DataClassification = ""
	ClassificationPublic       DataClassification = "public"
	ClassificationInternal     DataClassification = "internal"
	ClassificationConfidential DataClassification = "confidential"
	ClassificationRestricted   DataClassification = "restricted"
)

// GrantMethod records how the entitlement was originally granted.
type GrantMethod string

const (
	GrantUnspecified GrantMethod = ""
	GrantManual      GrantMethod = "manual"
	GrantAutomatic   GrantMethod = "automatic"
	GrantRoleBased   GrantMethod = "role_based"
)

// Subject is one reviewed identity inside a campaign. It exclusively owns its
// items; item order is preserved for display only.
type Subject struct {
	ID             string
	FullName       string
	Email          string
	EmployeeID     string
	JobTitle       string
	Department     string
	ManagerName    string
	ManagerEmail   string
	Location       string
	EmploymentType EmploymentType

	ReviewStatus ReviewStatus
	ReviewedAt   *time.Time
	ReviewedBy   string

	Items []Item
}

// Item is one access entitlement subject to certification.
type Item struct {
	ID                 string
	Application        string
	Environment        string
	RoleName           string
	RoleDescription    string
	EntitlementName    string
	EntitlementType    string
	Scope              string
	PrivilegeLevel     PrivilegeLevel
	DataClassification DataClassification
	GrantMethod        GrantMethod
	SODConcern         bool

	Decision Decision
}

// IsHighRisk reports whether the item is excluded from bulk decisions when
// the skip-high-risk rule is on.
func (i Item) IsHighRisk() bool {
	return i.PrivilegeLevel.IsPrivileged() || i.DataClassification == ClassificationRestricted
}

// ItemRef addresses an item within its owning subject.
type ItemRef struct {
	SubjectID string
	ItemID    string
}

// String renders a stable subject/item pair label for error metadata.
func (r ItemRef) String() string {
	return r.SubjectID + "/" + r.ItemID
}

// EmploymentTypeFromLabel parses a string label into an EmploymentType.
// Empty values default to employee; matching is case-insensitive.
func EmploymentTypeFromLabel(value string) (EmploymentType, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "":
		return EmploymentEmployee, nil
	case "employee":
		return EmploymentEmployee, nil
	case "contractor":
		return EmploymentContractor, nil
	case "vendor":
		return EmploymentVendor, nil
	default:
		return EmploymentUnspecified, fmt.Errorf("unknown employment type: %s", value)
	}
}

// PrivilegeLevelFromLabel parses a string label into a PrivilegeLevel.
func PrivilegeLevelFromLabel(value string) (PrivilegeLevel, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "":
		return PrivilegeStandard, nil
	case "standard":
		return PrivilegeStandard, nil
	case "elevated":
		return PrivilegeElevated, nil
	case "admin":
		return PrivilegeAdmin, nil
	case "super_admin":
		return PrivilegeSuperAdmin, nil
	default:
		return PrivilegeUnspecified, ErrInvalidPrivilegeLabel(value)
	}
}

// DataClassificationFromLabel parses a string label into a DataClassification.
func DataClassificationFromLabel(value string) (DataClassification, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "":
		return ClassificationInternal, nil
	case "public":
		return ClassificationPublic, nil
	case "internal":
		return ClassificationInternal, nil
	case "confidential":
		return ClassificationConfidential, nil
	case "restricted":
		return ClassificationRestricted, nil
	default:
		return ClassificationUnspecified, ErrInvalidClassificationLabel(value)
	}
}
