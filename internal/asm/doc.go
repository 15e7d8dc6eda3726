// Package asm implements a two-pass assembler for LC-3 source text: a syntax screen and lexer
// produce a flat token stream, a semantic checker resolves labels and validates operands against
// it, and an encoder walks the stream a second time to emit a 16-bit memory image.
//
// # Grammar
//
//	program     = { line } ;
//	line        = [ label ] ( directive | instruction ) [ comment ] | comment | ;
//	directive   = "." keyword [ operand ] ;
//	instruction = mnemonic [ operand { "," operand } ] ;
//	operand     = register | immediate | label | string ;
//	register    = ( "R" | "r" ) digit ;
//	immediate   = "#" [ "-" ] decimal | ( "x" | "X" ) [ "-" ] hexadecimal ;
//	label       = ( letter | "_" ) { letter | digit | "_" } ;
//	string      = '"' { character | escape } '"' ;
//	comment     = ";" { character } ;
package asm
