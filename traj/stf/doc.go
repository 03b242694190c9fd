/*
 * doc.go, part of interaph.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*
Package stf implements the simple trajectory format, a compressed text
trajectory that is easy to read and write from any language.

An STF stream starts with a header of key=value lines and ends it with a
line "** N", where N is the number of atoms per frame. The "prec" key
gives the number of decimal places kept (default 2). After the header,
each frame has one line per atom with the x, y and z coordinates in
Angstrom, multiplied by 10^prec and rounded to integers. A frame ends with
a line starting with "*", optionally followed by the 9 components of the
box vectors.

The whole stream is compressed. The method is chosen by the last character
of the file name: 'z' (stz) is gzip, 'r' (str) is raw deflate, 'l' (stl)
is LZW, anything else (stf) is zstd.
*/
package stf
