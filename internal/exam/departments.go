package exam

// Department is one selectable field of study on the home stage.
type Department struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Category string `json:"category"`
}

// ExamWindow is one past exam sitting that can be simulated.
type ExamWindow struct {
	Year    string `json:"year"`
	Session string `json:"session"`
}

// Categories lists the department filter tabs, "All" first.
var Categories = []string{"All", "Engineering", "Health", "Business", "Social"}

// AvailableExams covers the last 2.5 years of sittings, newest first.
var AvailableExams = []ExamWindow{
	{Year: "2025", Session: "Session I (Jan/Feb)"},
	{Year: "2024", Session: "Session II (June/July)"},
	{Year: "2024", Session: "Session I (Jan/Feb)"},
	{Year: "2023", Session: "Session II (June/July)"},
	{Year: "2023", Session: "Session I (Jan/Feb)"},
}

// Departments is the seeded department catalog.
var Departments = []Department{
	{ID: "cs", Name: "Computer Science", Icon: "💻", Category: "Engineering"},
	{ID: "se", Name: "Software Engineering", Icon: "⚙️", Category: "Engineering"},
	{ID: "civil", Name: "Civil Engineering", Icon: "🏗️", Category: "Engineering"},
	{ID: "med", Name: "Medicine", Icon: "🩺", Category: "Health"},
	{ID: "pharm", Name: "Pharmacy", Icon: "💊", Category: "Health"},
	{ID: "nurse", Name: "Nursing", Icon: "🏥", Category: "Health"},
	{ID: "acct", Name: "Accounting & Finance", Icon: "📊", Category: "Business"},
	{ID: "mgmt", Name: "Management", Icon: "👔", Category: "Business"},
	{ID: "econ", Name: "Economics", Icon: "📈", Category: "Business"},
	{ID: "law", Name: "Law", Icon: "⚖️", Category: "Social"},
	{ID: "psych", Name: "Psychology", Icon: "🧠", Category: "Social"},
}

// DepartmentByName resolves a department from its display name.
func DepartmentByName(name string) (Department, bool) {
	for _, d := range Departments {
		if d.Name == name {
			return d, true
		}
	}
	return Department{}, false
}

// FilterDepartments returns the departments in the given category;
// "All" (or empty) returns the full catalog.
func FilterDepartments(category string) []Department {
	if category == "" || category == "All" {
		return Departments
	}
	var out []Department
	for _, d := range Departments {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}
