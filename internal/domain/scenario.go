package domain

// Scenario labels which of department, unit and user were resolved
type Scenario string

const (
	ScenarioAllFound          Scenario = "all three found"
	ScenarioUserMissing       Scenario = "department and unit found, user missing"
	ScenarioUnitMissing       Scenario = "department and user found, unit missing"
	ScenarioOnlyDepartment    Scenario = "only department"
	ScenarioDepartmentMissing Scenario = "unit and user found, department missing"
	ScenarioOnlyUnit          Scenario = "only unit"
	ScenarioOnlyUser          Scenario = "only user"
	ScenarioNothingMatches    Scenario = "nothing matches"
)

// Scenarios lists every label in truth-table order
var Scenarios = []Scenario{
	ScenarioAllFound,
	ScenarioUserMissing,
	ScenarioUnitMissing,
	ScenarioOnlyDepartment,
	ScenarioDepartmentMissing,
	ScenarioOnlyUnit,
	ScenarioOnlyUser,
	ScenarioNothingMatches,
}

// ScenarioFor derives the label from the three found flags
func ScenarioFor(departmentFound, unitFound, userFound bool) Scenario {
	switch {
	case departmentFound && unitFound && userFound:
		return ScenarioAllFound
	case departmentFound && unitFound:
		return ScenarioUserMissing
	case departmentFound && userFound:
		return ScenarioUnitMissing
	case departmentFound:
		return ScenarioOnlyDepartment
	case unitFound && userFound:
		return ScenarioDepartmentMissing
	case unitFound:
		return ScenarioOnlyUnit
	case userFound:
		return ScenarioOnlyUser
	default:
		return ScenarioNothingMatches
	}
}
