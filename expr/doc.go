// Package expr parses, evaluates, and differentiates arithmetic formulas over
// named real variables with arbitrary-precision floating-point arithmetic.
//
// The syntax of expressions is intended to be similar to math you'd write in
// your notes, with maybe a few more spaces. "2 x y" is a multiplication of
// three terms. So is "{2}[x](y)" (although not "2 xy"), and "m(v-u)" is
// "m*(v-u)". "-2^2^n" is the same as "-(2^(2^n))", where "a^b" is
// exponentiation; "a**b" means the same.
//
// The default functions are exp, ln, log (also natural), log10, sqrt, sin,
// cos, tan, and the constants pi and e (or E). Every expression built from them can be
// differentiated exactly with respect to any of its variables using
// (*Expr).Diff, which yields another expression.
//
// Precision is given in significant decimal digits. Evaluation carries extra
// guard bits internally and rounds the result to the requested number of
// digits.
package expr
