// Package prompts holds the extraction prompt templates, one per response
// schema variant.
package prompts

// Hierarchical asks the model for a nested series→items structure with plain
// string fields plus document-level notes.
const Hierarchical = `
You are converting a typed archival finding aid (1960s-1990s) into a hierarchical JSON.

SCOPE
- Ignore the "context area" at the front (repository banners, page headers, cover matter).
- Parse ONLY the hierarchical record list (series/groups and their items).
- Capture handwritten/digital annotations that appear in the record list.

DEFINITIONS & STRUCTURE
- A Series is the parent-level heading above a block of items (often a person/firm name). When a new parent heading appears, that becomes the current series; following items inherit it until the next parent heading.
- Page/collection headers are NOT series. Put such page-level context in "document_notes" only.
- Series notes: If a "Note:" line appears immediately under a series heading (applies to that whole series), capture it verbatim as series_notes for that series. Do NOT duplicate this note inside any item text.
- "Unit n" lines (e.g., Unit 1, Unit 22) set the current unit; all subsequent items inherit that unit until another "Unit n" appears.
- finding_aid_reference is the original left-margin numbering EXACTLY AS PRINTED (e.g., "1.", "2.", "5.", "5.(1)", "5.(2)", "5/1").
  - If a sub-item appears only as "(1)" under a top-level "5.", emit "5.(1)" (or "5/1" if that page uses slash style). Preserve whatever style the page uses.
  - Do NOT normalize to "5.1" or strip trailing dots/parentheses/slashes.
- title is the item's first sentence/label (e.g., "Letter.", "Bond.", "Mortgage."). Do NOT include the series/heading itself in title.
- text is the FULL item content as one string, INCLUDING the title, the dates line, any extent lines, and any "Note:" lines. Do NOT include explicit "Unit n" lines in text.
- dates is the verbatim date string from the item (use the clearest/last explicit date line). Do not infer or reformat dates.
- annotations are item-level notes (e.g., "Note: ..."). These must ALSO be present inline within text (except the series-level note captured in series_notes).

RULES
- Preserve punctuation and case exactly.
- Remove line breaks unless they indicate a new row/item; keep whitespace minimal.
- If a field is missing, use "" (empty string), not null.
- Word-level OCR uncertainty: when ANY word/token is not confidently read, insert an inline tag immediately after the best-guess word in this exact form:
  <best_guess>[OCR uncertain <raw_or_alt>, uncertain level NN/100]
- Do not infer or reformat dates; keep as seen (e.g., "c.1900-1910").
- Do not normalize or pad numbering (keep "1/1", "1/1/1", "5.(1)" verbatim).
- Never return prose. ALWAYS return valid JSON only.
- If these pages contain no items, return exactly:
{"series": [], "unassigned_items": [], "document_notes": "no items on these pages"}

OUTPUT (return ONLY JSON, no prose):
{
  "series": [
    {
      "series": "<parent heading text or ''>",
      "series_notes": "<verbatim 'Note:' directly under the series heading or ''>",
      "items": [
        {
          "unit": "<Unit n or ''>",
          "finding_aid_reference": "<left margin number as printed>",
          "title": "<first-sentence label or ''>",
          "text": "<FULL item text (includes title + dates + notes; excludes series-level note)>",
          "dates": "<verbatim date or ''>",
          "annotations": ["<item-level note>", "..."]
        }
      ]
    }
  ],
  "unassigned_items": [],
  "document_notes": "<page/collection headers or OCR caveats; NOT series>"
}
`

// FlatConfidence asks the model for a flat item list where every scalar
// field is a {"value", "confidence"} object with an "x/5" confidence string.
const FlatConfidence = `
You are an expert archival OCR assistant. Your task is to read a scanned archival finding aid
and output a flat JSON list of items.

Do not infer hierarchy, carry information forward from previous items, or normalise references.
Your job is purely: read what is on the page, label fields, and give a confidence score.

All scalar fields MUST be JSON objects of the form:

  { "value": <string>, "confidence": "x/5" }

where x is an integer between 0 and 5.

If the field is empty or not present for that item, you MUST return:

  { "value": "", "confidence": null }

For list-type fields (like "annotations"), each element must also be such an object.

CORE RULES

1. Treat each left-margin reference as one item.
   - This includes top-level numbers like "1.", "2.", "5." even if they only have a short heading.

2. Also record GROUP headings such as "GROUP I. PAPERS...." or
   "GROUP 2. MANUSCRIPTS, ARTICLES, BROADCASTS, LECTURES." These may not have a
   left-margin number, but they must be preserved as items.

3. CONFIDENCE RULES (FOLLOW STRICTLY)
   Encode confidence as the exact string "x/5" with x an integer 0-5:
   5/5 very clear exact reading; 4/5 clear with minor imperfections;
   3/5 noticeably degraded or uncertain; 2/5 heavily degraded;
   1/5 mostly illegible; 0/5 missing/unreadable (use "value": "" and "confidence": null).
   If any part of a word contains corrupted glyphs, foreign-language intrusions,
   partial strokes, merged characters, over/under-inking, warping or speckling,
   the score must NOT exceed "3/5".

4. Do not:
   - carry forward group / series / unit from previous items,
   - invent or guess hierarchy,
   - rewrite or renumber references.

FIELD DEFINITIONS - EACH VALUE IS { "value": string, "confidence": "x/5" }

Every item must be a JSON object with these keys:

- "group"                      group heading line as printed, or ""
- "group_notes"                note text attached to the group heading, or ""
- "series"                     series heading above this item's block, only if printed here
- "series_notes"               "Note:" line directly under that series heading
- "unit"                       "Unit n" line as printed, only if printed at this item
- "finding_aid_reference_raw"  left-margin numbering exactly as printed
- "text"                       full item text as one string, punctuation preserved
- "start_date_original"        verbatim start date string, or the single date
- "end_date_original"          verbatim end date string when a range is printed, else ""
- "start_date_formatted"       best-effort YYYY-MM-DD for the start date, else ""
- "end_date_formatted"         best-effort YYYY-MM-DD for the end date, else ""
- "annotations"                list of handwritten/marginal notes (may be empty)

OUTPUT (return ONLY JSON, no prose):
{ "items": [ { ...item objects as defined above... } ] }

If these pages contain no items, return exactly: { "items": [] }
`
