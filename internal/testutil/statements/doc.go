// Package statements builds transaction histories for tests.
//
// Histories are assembled with a fluent builder or taken from fixtures that
// describe common customer shapes:
//
//	txns := statements.New().
//		WithSalary(5000, 3).
//		With(model.CategoryFood, 120, 6).
//		Build()
//
//	student := statements.FixtureStudent.Transactions()
//
// Every built transaction has a positive amount, a known category and a
// unique id, so histories pass input validation unchanged.
package statements
