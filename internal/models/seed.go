package models

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultAdminEmail is the account created on first start.
const DefaultAdminEmail = "admin@nyx.ge"

// SeedDefaultData creates the default admin, job roles, employees and
// policies when their tables are empty. adminPasswordHash is stored as-is.
func SeedDefaultData(db *gorm.DB, adminPasswordHash string) error {
	var admin User
	err := db.Where("email = ?", DefaultAdminEmail).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		admin = User{
			Email:        DefaultAdminEmail,
			PasswordHash: adminPasswordHash,
			Role:         "ADMIN",
			AuthType:     AuthTypeLocal,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	} else if err != nil {
		return err
	}

	if err := seedIfEmpty(db, &JobRole{}, defaultRoles()); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if err := seedIfEmpty(db, &Employee{}, defaultEmployees()); err != nil {
		return fmt.Errorf("seed employees: %w", err)
	}
	if err := seedIfEmpty(db, &Policy{}, defaultPolicies()); err != nil {
		return fmt.Errorf("seed policies: %w", err)
	}
	return nil
}

func seedIfEmpty[T any](db *gorm.DB, model interface{}, rows []T) error {
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&rows).Error
}

func ls(en, ka string) LocalizedString { return LocalizedString{En: en, Ka: ka} }

func uintPtr(v uint) *uint { return &v }

func defaultRoles() []JobRole {
	return []JobRole{
		{Title: ls("Software Engineer", "პროგრამული უზრუნველყოფის ინჟინერი"),
			RequiredSkills: datatypes.JSONSlice[string]{"React", "Node.js", "TypeScript", "SQL"}},
		{Title: ls("Product Manager", "პროდუქტის მენეჯერი"),
			RequiredSkills: datatypes.JSONSlice[string]{"Agile", "Roadmap Planning", "User Research", "Data Analysis"}},
		{Title: ls("UI/UX Designer", "UI/UX დიზაინერი"),
			RequiredSkills: datatypes.JSONSlice[string]{"Figma", "User Persona", "Prototyping"}},
	}
}

func twin(trend string, score int, status, sentiment string) datatypes.JSON {
	return datatypes.JSON(fmt.Sprintf(
		`{"engagementTrend":%q,"readiness":{"score":%d,"status":%q},"sentiment":%q}`,
		trend, score, status, sentiment))
}

func months(rows ...[3]float64) datatypes.JSONSlice[PerformancePoint] {
	names := []string{"May", "Jun", "Jul"}
	out := make(datatypes.JSONSlice[PerformancePoint], len(rows))
	for i, r := range rows {
		out[i] = PerformancePoint{Month: names[i], Engagement: r[0], Productivity: r[1], Wellbeing: r[2]}
	}
	return out
}

func defaultEmployees() []Employee {
	return []Employee{
		{
			Name:             ls("Ana Ivanova", "ანა ივანოვა"),
			CurrentRole:      ls("CEO", "აღმასრულებელი დირექტორი"),
			Department:       ls("Management", "მენეჯმენტი"),
			HireDate:         "2018-01-15",
			Education:        ls("Harvard Business School", "ჰარვარდის ბიზნეს სკოლა"),
			Skills:           datatypes.JSONSlice[string]{"Leadership", "Strategy", "Finance"},
			PerformanceScore: 98,
			Grade:            "A",
			CareerGoals:      datatypes.JSONSlice[LocalizedString]{ls("Expand to European market", "ევროპის ბაზარზე გასვლა")},
			PerformanceData:  months([3]float64{9, 10, 8}, [3]float64{10, 10, 9}, [3]float64{9, 10, 8}),
			Feedback: ls("Ana's strategic vision has been pivotal to our growth this year.",
				"ანას სტრატეგიული ხედვა გადამწყვეტი იყო ჩვენი ზრდისთვის ამ წელს."),
			DigitalTwin: twin("stable", 98, "Ready Now", "Positive"),
		},
		{
			Name:             ls("Luka Japaridze", "ლუკა ჯაფარიძე"),
			CurrentRole:      ls("CTO", "ტექნიკური დირექტორი"),
			Department:       ls("Technology", "ტექნოლოგიები"),
			HireDate:         "2019-03-20",
			Education:        ls("Georgian Technical University", "საქართველოს ტექნიკური უნივერსიტეტი"),
			Skills:           datatypes.JSONSlice[string]{"System Architecture", "AI/ML", "Team Leadership"},
			PerformanceScore: 95,
			Grade:            "A",
			CareerGoals: datatypes.JSONSlice[LocalizedString]{
				ls("Implement a new microservices architecture", "ახალი მიკროსერვისების არქიტექტურის დანერგვა"),
			},
			PerformanceData: months([3]float64{9, 9, 7}, [3]float64{9, 10, 8}, [3]float64{10, 9, 8}),
			Feedback: ls("Luka is a technical powerhouse, driving our innovation forward.",
				"ლუკა ტექნიკურად ძალიან ძლიერია და ჩვენს ინოვაციებს უძღვება."),
			DigitalTwin: twin("up", 95, "Ready Now", "Positive"),
		},
		{
			Name:             ls("Sandro Tskitishvili", "სანდრო ცქიტიშვილი"),
			CurrentRole:      ls("Lead Software Engineer", "წამყვანი პროგრამული ინჟინერი"),
			Department:       ls("Engineering", "ინჟინერია"),
			HireDate:         "2020-08-15",
			Education:        ls("Free University", "თავისუფალი უნივერსიტეტი"),
			Skills:           datatypes.JSONSlice[string]{"React", "Node.js", "TypeScript", "DevOps"},
			PerformanceScore: 92,
			Grade:            "A",
			CareerGoals:      datatypes.JSONSlice[LocalizedString]{ls("Become a team lead", "გუნდის ხელმძღვანელობა")},
			PerformanceData:  months([3]float64{8, 9, 7}, [3]float64{9, 9, 8}, [3]float64{8, 10, 7}),
			Feedback: ls("Sandro is a key contributor to our frontend architecture and a great mentor.",
				"სანდრო ჩვენი ფრონტენდ არქიტექტურის საკვანძო ფიგურაა და შესანიშნავი მენტორი."),
			DigitalTwin: twin("stable", 85, "Ready in 1-2 years", "Positive"),
			JobRoleID:   uintPtr(1),
		},
		{
			Name:             ls("Mariam Abashidze", "მარიამ აბაშიძე"),
			CurrentRole:      ls("Senior Product Manager", "უფროსი პროდუქტ მენეჯერი"),
			Department:       ls("Product", "პროდუქტი"),
			HireDate:         "2021-05-20",
			Education:        ls("Tbilisi State University", "თბილისის სახელმწიფო უნივერსიტეტი"),
			Skills:           datatypes.JSONSlice[string]{"Agile", "Roadmap Planning", "JIRA", "User Research"},
			PerformanceScore: 90,
			Grade:            "A",
			CareerGoals: datatypes.JSONSlice[LocalizedString]{
				ls("Lead the entire product division", "პროდუქტის დივიზიონის ხელმძღვანელობა"),
			},
			PerformanceData: months([3]float64{9, 8, 8}, [3]float64{9, 9, 9}, [3]float64{9, 9, 8}),
			Feedback: ls("Mariam has excellent product sense and keeps the team focused on user needs.",
				"მარიამს პროდუქტის შესანიშნავი ხედვა აქვს და გუნდს მომხმარებლის საჭიროებებზე ამახვილებინებს ყურადღებას."),
			DigitalTwin: twin("up", 90, "Ready Now", "Positive"),
			JobRoleID:   uintPtr(2),
		},
		{
			Name:             ls("Levan Gelovani", "ლევან გელოვანი"),
			CurrentRole:      ls("Software Engineer", "პროგრამული ინჟინერი"),
			Department:       ls("Engineering", "ინჟინერია"),
			HireDate:         "2023-01-10",
			Education:        ls("Business and Technology University", "ბიზნესისა და ტექნოლოგიების უნივერსიტეტი"),
			Skills:           datatypes.JSONSlice[string]{"React", "CSS", "JavaScript"},
			PerformanceScore: 85,
			Grade:            "B",
			CareerGoals: datatypes.JSONSlice[LocalizedString]{
				ls("Learn backend technologies", "backend ტექნოლოგიების შესწავლა"),
			},
			PerformanceData: months([3]float64{7, 8, 6}, [3]float64{6, 7, 5}, [3]float64{6, 6, 4}),
			Feedback: ls("Levan is a fast learner, but has seemed less engaged recently. Needs more challenging tasks to stay motivated.",
				"ლევანი სწრაფად სწავლობს, მაგრამ ბოლო დროს ნაკლებად ჩართული ჩანს. მეტი რთული დავალება სჭირდება მოტივაციისთვის."),
			DigitalTwin: twin("down", 60, "Needs Development", "Neutral"),
			JobRoleID:   uintPtr(1),
		},
	}
}

const remoteWorkEn = `Remote Work Policy

1. Eligibility: All full-time employees who have completed their probation period (3 months) are eligible for remote work.

2. Schedule: Employees may work remotely up to 3 days per week, with mandatory in-office presence on Tuesdays and Thursdays.

3. Equipment: The company will provide a laptop and monitor. Employees are responsible for their internet connection (minimum 50 Mbps).

4. Communication: Employees must be available on Slack during core hours (10:00 - 18:00 Tbilisi time).

5. Performance: Remote work privileges may be revoked if performance metrics decline significantly.`

const remoteWorkKa = `დისტანციური მუშაობის პოლიტიკა

1. უფლებამოსილება: ყველა სრულ განაკვეთზე მომუშავე თანამშრომელი, რომელსაც გავლილი აქვს საცდელი ვადა (3 თვე), უფლებამოსილია დისტანციურად მუშაობისთვის.

2. გრაფიკი: თანამშრომლებს შეუძლიათ დისტანციურად იმუშაონ კვირაში 3 დღემდე, სამშაბათს და ხუთშაბათს ოფისში ყოფნა სავალდებულოა.

3. აღჭურვილობა: კომპანია უზრუნველყოფს ლეპტოპს და მონიტორს. თანამშრომლები პასუხისმგებელნი არიან საკუთარ ინტერნეტ კავშირზე (მინიმუმ 50 Mbps).

4. კომუნიკაცია: თანამშრომლები უნდა იყვნენ ხელმისაწვდომი Slack-ზე ძირითად საათებში (10:00 - 18:00 თბილისის დროით).

5. შესრულება: დისტანციური მუშაობის პრივილეგია შეიძლება გაუქმდეს, თუ შესრულების მაჩვენებლები მნიშვნელოვნად დაიკლებს.`

const annualLeaveEn = `Annual Leave Policy

1. Entitlement: All employees are entitled to 24 working days of paid annual leave per year.

2. Accrual: Leave accrues monthly at a rate of 2 days per month.

3. Notice: Employees must request leave at least 2 weeks in advance for periods longer than 5 days.

4. Carryover: Unused leave up to 5 days may be carried over to the next year.

5. Public Holidays: Georgian public holidays are in addition to annual leave.`

const annualLeaveKa = `ყოველწლიური შვებულების პოლიტიკა

1. უფლება: ყველა თანამშრომელს აქვს უფლება წელიწადში 24 სამუშაო დღის ანაზღაურებად ყოველწლიურ შვებულებაზე.

2. დაგროვება: შვებულება გროვდება ყოველთვიურად თვეში 2 დღის ოდენობით.

3. შეტყობინება: თანამშრომლებმა უნდა მოითხოვონ შვებულება მინიმუმ 2 კვირით ადრე 5 დღეზე მეტი პერიოდისთვის.

4. გადატანა: გამოუყენებელი შვებულება 5 დღემდე შეიძლება გადავიდეს მომდევნო წელს.

5. სახელმწიფო დღესასწაულები: საქართველოს სახელმწიფო დღესასწაულები ყოველწლიურ შვებულებას ემატება.`

func defaultPolicies() []Policy {
	return []Policy{
		{Title: ls("Remote Work Policy", "დისტანციური მუშაობის პოლიტიკა"), Content: ls(remoteWorkEn, remoteWorkKa)},
		{Title: ls("Annual Leave Policy", "ყოველწლიური შვებულების პოლიტიკა"), Content: ls(annualLeaveEn, annualLeaveKa)},
	}
}
