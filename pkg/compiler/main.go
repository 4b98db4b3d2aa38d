// Package compiler turns statements of a tiny C-like expression language
// (three variables x, y, z; = + - * / %; prefix and postfix ++ --;
// parentheses) into text assembly for a register machine.
//
// Pipeline per line: Lex → Parse (Disambiguate + recursive descent) → Check
// → Generate (codegen, postfix write-back, register reclaim).
//
// A Session compiles a whole input as one program: registers that cache a
// variable stay live from one statement to the next.
package compiler
