package models

// Department is the closed set of staff roles. A company has at most one staff
// user per department.
type Department string

const (
	DepartmentDispatch     Department = "dispatch"
	DepartmentHR           Department = "hr"
	DepartmentSafety       Department = "safety"
	DepartmentAccountant   Department = "accountant"
	DepartmentFleetManager Department = "fleet_manager"
)

var Departments = []Department{
	DepartmentDispatch,
	DepartmentHR,
	DepartmentSafety,
	DepartmentAccountant,
	DepartmentFleetManager,
}

// ParseDepartment matches exactly; "Dispatch" or " hr" are rejected.
func ParseDepartment(s string) (Department, bool) {
	for _, d := range Departments {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

func (d Department) Valid() bool {
	_, ok := ParseDepartment(string(d))
	return ok
}

func (d Department) String() string { return string(d) }
